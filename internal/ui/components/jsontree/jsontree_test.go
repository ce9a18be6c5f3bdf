package jsontree

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func newTree(docs ...string) Model {
	return New().SetSize(80, 20).Focus().SetDocuments(raw(docs...), "id")
}

func TestSetDocuments_OneRowPerDocument(t *testing.T) {
	m := newTree(`{"id":"a","n":1}`, `{"id":"b"}`, `{"name":"no id"}`)

	assert.Equal(t, 3, m.Len())
	view := m.View()
	assert.Contains(t, view, "a")
	assert.Contains(t, view, "#2")
	assert.Equal(t, 3, strings.Count(view, DeleteMarker))
}

func TestExpand_KeepsKeyOrder(t *testing.T) {
	m := newTree(`{"id":"a","zeta":1,"alpha":{"x":true},"list":[1,2]}`)
	m = press(m, "right")

	require.Equal(t, 5, m.Len())
	lines := strings.Split(m.Blur().View(), "\n")
	assert.Contains(t, lines[1], "id")
	assert.Contains(t, lines[2], "zeta")
	assert.Contains(t, lines[3], "alpha")
	assert.Contains(t, lines[4], "list")
	assert.Contains(t, lines[4], "[2]")
}

func TestCurrentDocument_FromNestedRow(t *testing.T) {
	m := newTree(`{"id":"a"}`, `{"id":"b","tags":["x","y"]}`)
	m = press(m, "down", "right", "down", "down", "right", "down")

	doc, ok := m.CurrentDocument()
	require.True(t, ok)
	assert.Equal(t, 1, doc)
	assert.False(t, m.OnDocument())
}

func TestCollapse_JumpsToParent(t *testing.T) {
	m := newTree(`{"id":"a","inner":{"k":"v"}}`)
	m = press(m, "right", "down", "down")
	assert.False(t, m.OnDocument())

	m = press(m, "left")
	assert.True(t, m.OnDocument())
	assert.Equal(t, 1, m.Len())
}

func TestScalarDocuments(t *testing.T) {
	m := newTree(`"plain"`, `42`, `null`)
	assert.Equal(t, 3, m.Len())
	view := m.Blur().View()
	assert.Contains(t, view, `"plain"`)
	assert.Contains(t, view, "42")
	assert.Contains(t, view, "null")
}

func TestSelectDocument(t *testing.T) {
	m := newTree(`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`).SelectDocument(2)
	doc, _ := m.CurrentDocument()
	assert.Equal(t, 2, doc)
	assert.True(t, m.OnDocument())
}

func TestExpandAll(t *testing.T) {
	m := newTree(`{"id":"a","o":{"k":1}}`, `{"id":"b"}`)
	m = press(m, "E")
	assert.Equal(t, 6, m.Len())
	m = press(m, "C")
	assert.Equal(t, 2, m.Len())
}

func TestEmpty(t *testing.T) {
	m := New().SetDocuments(nil, "id")
	_, ok := m.CurrentDocument()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "no documents")
}

func TestUnfocusedIgnoresKeys(t *testing.T) {
	m := newTree(`{"id":"a"}`, `{"id":"b"}`).Blur()
	m = press(m, "down")
	assert.Equal(t, 0, m.Cursor())
}
