// Package docview renders the gateway's HTML documentation as styled,
// word-wrapped terminal text with highlighted code blocks.
package docview

import (
	"context"
	_ "embed"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nhath/ezcoll/internal/ui/styles"
)

//go:embed docs.html
var embeddedDocs string

// Embedded returns the documentation bundled with the binary
func Embedded() string { return embeddedDocs }

// Source is anything that serves the documentation fragment
type Source interface {
	Docs(ctx context.Context) (string, error)
}

// LoadedMsg carries the documentation to show. Err is set when the gateway
// failed and the bundled pages were used instead.
type LoadedMsg struct {
	HTML     string
	Fallback bool
	Err      error
}

// LoadCmd fetches the documentation, falling back to the bundled pages
func LoadCmd(ctx context.Context, src Source) tea.Cmd {
	return func() tea.Msg {
		html, err := src.Docs(ctx)
		if err != nil || strings.TrimSpace(html) == "" {
			return LoadedMsg{HTML: embeddedDocs, Fallback: true, Err: err}
		}
		return LoadedMsg{HTML: html}
	}
}

// Styles for the rendered text
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Text    lipgloss.Style
	Bold    lipgloss.Style
	Italic  lipgloss.Style
	Code    lipgloss.Style
	Bullet  lipgloss.Style
	Rule    lipgloss.Style
}

// DefaultStyles builds styles from the current palette
func DefaultStyles() Styles {
	return Styles{
		Title:   styles.TitleStyle.Underline(true),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(styles.HighlightColor()),
		Text:    lipgloss.NewStyle().Foreground(styles.TextPrimary()),
		Bold:    lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary()),
		Italic:  lipgloss.NewStyle().Italic(true).Foreground(styles.TextSecondary()),
		Code:    lipgloss.NewStyle().Foreground(styles.AccentColor()),
		Bullet:  lipgloss.NewStyle().Foreground(styles.AccentColor()),
		Rule:    lipgloss.NewStyle().Foreground(styles.TextFaint()),
	}
}

// Model is the documentation page
type Model struct {
	doc         Document
	anchorLines map[string]int
	viewport    viewport.Model
	width       int
	height      int
	chromaStyle string
	styles      Styles
	loaded      bool
	fallback    bool
}

// New creates an empty documentation view
func New() Model {
	return Model{
		viewport:    viewport.New(80, 20),
		width:       80,
		height:      20,
		chromaStyle: styles.ChromaStyle(),
		styles:      DefaultStyles(),
	}
}

func (m Model) SetStyles(s Styles, chromaStyle string) Model {
	m.styles = s
	m.chromaStyle = chromaStyle
	return m.render()
}

func (m Model) SetSize(w, h int) Model {
	m.width = max(w, 10)
	m.height = max(h, 1)
	m.viewport.Width = m.width
	m.viewport.Height = m.height
	return m.render()
}

// SetHTML parses and renders a documentation fragment
func (m Model) SetHTML(src string, fallback bool) (Model, error) {
	doc, err := Parse(src)
	if err != nil {
		return m, err
	}
	m.doc = doc
	m.loaded = true
	m.fallback = fallback
	m.viewport.GotoTop()
	return m.render(), nil
}

func (m Model) Loaded() bool   { return m.loaded }
func (m Model) Fallback() bool { return m.fallback }

// Anchors lists the headings that carry an id
func (m Model) Anchors() []Anchor { return m.doc.Anchors }

// JumpTo scrolls the heading with id to the top
func (m Model) JumpTo(id string) Model {
	if line, ok := m.anchorLines[id]; ok {
		m.viewport.SetYOffset(line)
	}
	return m
}

// YOffset is the first visible line
func (m Model) YOffset() int { return m.viewport.YOffset }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.loaded {
		return m.styles.Rule.Render("Loading documentation...")
	}
	return m.viewport.View()
}

func (m Model) render() Model {
	if !m.loaded {
		return m
	}
	content, lines := Render(m.doc, m.width, m.styles, m.chromaStyle)
	m.anchorLines = lines
	m.viewport.SetContent(content)
	return m
}

// Render lays out a parsed document at width. It also returns the line of
// every anchored heading.
func Render(doc Document, width int, s Styles, chromaStyle string) (string, map[string]int) {
	var b strings.Builder
	anchors := make(map[string]int)
	lineCount := func() int { return strings.Count(b.String(), "\n") }

	for i, blk := range doc.Blocks {
		switch blk.Kind {
		case BlockHeading:
			if i > 0 {
				b.WriteString("\n")
			}
			if blk.ID != "" {
				anchors[blk.ID] = lineCount()
			}
			style := s.Heading
			if blk.Level == 1 {
				style = s.Title
			}
			b.WriteString(style.Render(renderInline(blk.Inline, s)))
			b.WriteString("\n\n")

		case BlockParagraph:
			b.WriteString(wordwrap.String(renderInline(blk.Inline, s), width))
			b.WriteString("\n\n")

		case BlockListItem:
			pad := uint(blk.Level * 2)
			body := wordwrap.String(renderInline(blk.Inline, s), max(width-int(pad)-2, 10))
			body = strings.ReplaceAll(body, "\n", "\n  ")
			b.WriteString(indent.String(s.Bullet.Render("•")+" "+body, pad))
			b.WriteString("\n")
			if i+1 == len(doc.Blocks) || doc.Blocks[i+1].Kind != BlockListItem {
				b.WriteString("\n")
			}

		case BlockCode:
			b.WriteString(indent.String(highlight(blk.Text, blk.Lang, chromaStyle, s), 2))
			b.WriteString("\n\n")

		case BlockRule:
			b.WriteString(s.Rule.Render(strings.Repeat("─", max(width, 1))))
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), anchors
}

func renderInline(spans []Span, s Styles) string {
	var b strings.Builder
	for _, sp := range spans {
		switch {
		case sp.Code:
			b.WriteString(s.Code.Render(sp.Text))
		case sp.Bold:
			b.WriteString(s.Bold.Render(sp.Text))
		case sp.Italic:
			b.WriteString(s.Italic.Render(sp.Text))
		case sp.Text == "\n":
			b.WriteString("\n")
		default:
			b.WriteString(s.Text.Render(sp.Text))
		}
	}
	return strings.TrimSpace(b.String())
}

func highlight(code, lang, style string, s Styles) string {
	code = strings.Trim(code, "\n")
	if lang == "" || style == "" {
		return s.Code.Render(code)
	}
	var b strings.Builder
	if err := quick.Highlight(&b, code, lang, "terminal256", style); err != nil {
		return s.Code.Render(code)
	}
	return strings.TrimRight(b.String(), "\n")
}
