package docview

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockCode
	BlockRule
)

// Span is a run of inline text with one style
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Block is one vertical unit of the page
type Block struct {
	Kind   BlockKind
	Level  int // heading level or list depth
	ID     string
	Lang   string
	Text   string // code blocks only
	Inline []Span
}

// Anchor is a heading that can be jumped to
type Anchor struct {
	ID    string
	Title string
	Level int
}

// Document is a parsed documentation fragment
type Document struct {
	Blocks  []Block
	Anchors []Anchor
}

// Parse reads an HTML fragment into blocks
func Parse(src string) (Document, error) {
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return Document{}, fmt.Errorf("parse docs: %w", err)
	}

	p := &parser{}
	for _, n := range nodes {
		p.block(n, 0)
	}
	p.flush()
	return p.doc, nil
}

type parser struct {
	doc     Document
	pending []Span
}

func (p *parser) block(n *html.Node, depth int) {
	if n.Type == html.TextNode {
		p.inline(n, Span{})
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.flush()
		level := int(n.Data[1] - '0')
		spans := p.spans(n)
		id := attr(n, "id")
		p.doc.Blocks = append(p.doc.Blocks, Block{Kind: BlockHeading, Level: level, ID: id, Inline: spans})
		if id != "" {
			p.doc.Anchors = append(p.doc.Anchors, Anchor{ID: id, Title: plain(spans), Level: level})
		}

	case atom.P:
		p.flush()
		p.doc.Blocks = append(p.doc.Blocks, Block{Kind: BlockParagraph, Inline: p.spans(n)})

	case atom.Ul, atom.Ol:
		p.flush()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.DataAtom == atom.Li:
				p.listItem(c, depth)
			case c.DataAtom == atom.Ul || c.DataAtom == atom.Ol:
				p.block(c, depth+1)
			}
		}

	case atom.Pre:
		p.flush()
		lang := ""
		if code := firstChild(n, atom.Code); code != nil {
			lang = language(attr(code, "class"))
		}
		p.doc.Blocks = append(p.doc.Blocks, Block{Kind: BlockCode, Lang: lang, Text: textContent(n)})

	case atom.Hr:
		p.flush()
		p.doc.Blocks = append(p.doc.Blocks, Block{Kind: BlockRule})

	case atom.Script, atom.Style:

	case atom.Div, atom.Section, atom.Article, atom.Body, atom.Header, atom.Footer, atom.Main:
		p.flush()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c, depth)
		}
		p.flush()

	default:
		p.inline(n, Span{})
	}
}

// listItem keeps the text of li and descends into nested lists
func (p *parser) listItem(li *html.Node, depth int) {
	var spans []Span
	var nested []*html.Node
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol {
			nested = append(nested, c)
			continue
		}
		spans = collect(c, Span{}, spans)
	}
	p.doc.Blocks = append(p.doc.Blocks, Block{Kind: BlockListItem, Level: depth, Inline: spans})
	for _, n := range nested {
		p.block(n, depth+1)
	}
}

// inline buffers loose text until the next block starts
func (p *parser) inline(n *html.Node, style Span) {
	p.pending = collect(n, style, p.pending)
}

func (p *parser) flush() {
	if plain(p.pending) != "" {
		p.doc.Blocks = append(p.doc.Blocks, Block{Kind: BlockParagraph, Inline: p.pending})
	}
	p.pending = nil
}

func (p *parser) spans(n *html.Node) []Span {
	var out []Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = collect(c, Span{}, out)
	}
	return out
}

func collect(n *html.Node, style Span, out []Span) []Span {
	switch n.Type {
	case html.TextNode:
		text := collapse(n.Data)
		if text == "" {
			return out
		}
		s := style
		s.Text = text
		return append(out, s)
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Strong, atom.B:
			style.Bold = true
		case atom.Em, atom.I:
			style.Italic = true
		case atom.Code, atom.Kbd, atom.Samp:
			style.Code = true
		case atom.Br:
			return append(out, Span{Text: "\n"})
		case atom.Script, atom.Style:
			return out
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = collect(c, style, out)
		}
	}
	return out
}

// collapse folds whitespace runs into single spaces, keeping edges
func collapse(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	var b strings.Builder
	if isSpace(s[0]) {
		b.WriteByte(' ')
	}
	b.WriteString(strings.Join(fields, " "))
	if isSpace(s[len(s)-1]) {
		b.WriteByte(' ')
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func plain(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return strings.TrimSpace(b.String())
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func firstChild(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == a {
			return c
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// language reads "lang-js" or "language-js" from a class list
func language(class string) string {
	for _, c := range strings.Fields(class) {
		for _, prefix := range []string{"lang-", "language-"} {
			if strings.HasPrefix(c, prefix) {
				return strings.TrimPrefix(c, prefix)
			}
		}
	}
	return ""
}
