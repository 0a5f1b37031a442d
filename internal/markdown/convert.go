package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// chunk is a run of plain Markdown lines parsed by goldmark in one pass.
type chunk struct {
	t     *transformer
	src   []byte
	first int
}

func (t *transformer) markdown(lines []string, first int) []Block {
	src := []byte(strings.Join(lines, "\n") + "\n")
	root := t.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext(parser.WithIDs(t.ids))))
	c := &chunk{t: t, src: src, first: first}
	return c.blocks(root)
}

func (c *chunk) blocks(parent gmast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *chunk) block(n gmast.Node) Block {
	switch node := n.(type) {
	case *gmast.Heading:
		return &Heading{Level: node.Level, ID: headingID(node), Children: c.inlines(node)}
	case *gmast.Paragraph:
		return &Paragraph{Children: c.inlines(node)}
	case *gmast.TextBlock:
		return &Paragraph{Children: c.inlines(node)}
	case *gmast.List:
		list := &List{Ordered: node.IsOrdered(), Start: node.Start, Tight: node.IsTight}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, ListItem{Children: c.blocks(item)})
		}
		return list
	case *gmast.FencedCodeBlock:
		return &CodeBlock{Language: string(node.Language(c.src)), Code: c.lines(node)}
	case *gmast.CodeBlock:
		return &CodeBlock{Code: c.lines(node)}
	case *gmast.Blockquote:
		return &Blockquote{Children: c.blocks(node)}
	case *gmast.ThematicBreak:
		return &ThematicBreak{}
	case *gmast.HTMLBlock:
		markup := c.lines(node)
		if node.HasClosure() {
			markup += "\n" + string(node.ClosureLine.Value(c.src))
		}
		return &RawMarkup{Markup: strings.TrimRight(markup, "\n")}
	}
	return nil
}

// headingID returns the id goldmark assigned while parsing.
func headingID(h *gmast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	if id, ok := v.([]byte); ok {
		return string(id)
	}
	return ""
}

// unescape resolves backslash escapes and character references in the same
// order goldmark's HTML writer does when it renders text.
func unescape(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}

func (c *chunk) lines(n gmast.Node) string {
	var buf bytes.Buffer
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(c.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (c *chunk) inlines(parent gmast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.inline(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *chunk) inline(n gmast.Node) Block {
	switch node := n.(type) {
	case *gmast.Text:
		value := node.Segment.Value(c.src)
		if !node.IsRaw() {
			value = unescape(value)
		}
		return &Text{
			Value:     string(value),
			SoftBreak: node.SoftLineBreak(),
			HardBreak: node.HardLineBreak(),
		}
	case *gmast.String:
		if node.IsRaw() || node.IsCode() {
			return &Text{Value: string(node.Value)}
		}
		return &Text{Value: string(unescape(node.Value))}
	case *gmast.Emphasis:
		if node.Level >= 2 {
			return &Strong{Children: c.inlines(node)}
		}
		return &Emphasis{Children: c.inlines(node)}
	case *gmast.CodeSpan:
		var buf bytes.Buffer
		for ch := node.FirstChild(); ch != nil; ch = ch.NextSibling() {
			switch s := ch.(type) {
			case *gmast.Text:
				buf.Write(s.Segment.Value(c.src))
			case *gmast.String:
				buf.Write(s.Value)
			}
		}
		return &CodeSpan{Code: buf.String()}
	case *gmast.Link:
		return &Link{
			Target:   string(unescape(node.Destination)),
			Title:    string(unescape(node.Title)),
			Children: c.inlines(node),
			Line:     c.lineOf(node),
		}
	case *gmast.AutoLink:
		return &Link{
			Target:   string(node.URL(c.src)),
			Children: []Block{&Text{Value: string(node.Label(c.src))}},
			Line:     c.lineOf(node),
		}
	case *gmast.Image:
		return &Image{
			Src:     string(unescape(node.Destination)),
			Alt:     PlainText(c.inlines(node)),
			Caption: string(unescape(node.Title)),
			Inline:  true,
		}
	case *gmast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		return &RawMarkup{Markup: buf.String()}
	}
	return nil
}

// lineOf maps a node to its file line using the first text segment beneath
// it, falling back to the enclosing block.
func (c *chunk) lineOf(n gmast.Node) int {
	offset := -1
	_ = gmast.Walk(n, func(x gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if t, ok := x.(*gmast.Text); ok && entering {
			offset = t.Segment.Start
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	if offset < 0 {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Type() == gmast.TypeBlock && p.Lines().Len() > 0 {
				offset = p.Lines().At(0).Start
				break
			}
		}
	}
	line := c.first
	if offset > 0 {
		line += bytes.Count(c.src[:offset], []byte("\n"))
	}
	return line + c.t.opts.LineOffset
}
