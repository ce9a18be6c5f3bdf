package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopupStack(t *testing.T) {
	s := NewPopupStack()
	assert.True(t, s.IsEmpty())

	var closed []string
	closer := func(name string) PopupCloser {
		return func(*Model) bool {
			closed = append(closed, name)
			return true
		}
	}
	s.Push("help", closer("help"))
	s.Push("picker", closer("picker"))
	assert.Equal(t, "picker", s.TopName())

	assert.True(t, s.CloseTop(nil))
	assert.Equal(t, []string{"picker"}, closed)

	s.Push("picker", closer("picker"))
	s.Remove("help")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "picker", s.TopName())

	s.CloseTop(nil)
	assert.False(t, s.CloseTop(nil))
	assert.Equal(t, []string{"picker", "picker"}, closed)
}

func TestLimitString(t *testing.T) {
	assert.Equal(t, "short", limitString("short", 10))
	assert.Equal(t, "abc...xyz", limitString("abcdefghijklmnopqrstuvwxyz", 9))
}
