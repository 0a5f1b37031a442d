package markdown

// Kind identifies the variant of a content block.
type Kind string

const (
	KindHeading       Kind = "heading"
	KindParagraph     Kind = "paragraph"
	KindCodeTab       Kind = "code_tab"
	KindList          Kind = "list"
	KindLink          Kind = "link"
	KindRawMarkup     Kind = "raw_markup"
	KindText          Kind = "text"
	KindEmphasis      Kind = "emphasis"
	KindStrong        Kind = "strong"
	KindCodeSpan      Kind = "code_span"
	KindCodeBlock     Kind = "code_block"
	KindImage         Kind = "image"
	KindCallout       Kind = "callout"
	KindThematicBreak Kind = "thematic_break"
	KindBlockquote    Kind = "blockquote"
)

// Block is one node of a transformed document body. Block values are never
// mutated after Transform returns; link resolution keys off pointer identity.
type Block interface {
	Kind() Kind
}

// Heading is an ATX or setext heading. ID is a slug unique within the document.
type Heading struct {
	Level    int
	ID       string
	Children []Block
}

// Paragraph holds inline children.
type Paragraph struct {
	Children []Block
}

// List is an ordered or unordered list. Tight lists render item paragraphs
// without wrapping elements.
type List struct {
	Ordered bool
	Start   int
	Tight   bool
	Items   []ListItem
}

// ListItem holds the block children of a single list entry.
type ListItem struct {
	Children []Block
}

// Link is a cross-reference. Target is the literal destination as authored;
// resolution happens when pages are assembled.
type Link struct {
	Target   string
	Title    string
	Children []Block
	Line     int
}

// RawMarkup is passed through verbatim, or rendered as escaped text when
// Escaped is set (used for regions that failed to parse).
type RawMarkup struct {
	Markup  string
	Escaped bool
}

// Text is a literal run of characters.
type Text struct {
	Value     string
	SoftBreak bool
	HardBreak bool
}

// Emphasis wraps inline children.
type Emphasis struct {
	Children []Block
}

// Strong wraps inline children.
type Strong struct {
	Children []Block
}

// CodeSpan is inline code.
type CodeSpan struct {
	Code string
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Language string
	Code     string
}

// CodeTabEntry is one tab of a code comparison.
type CodeTabEntry struct {
	Label    string
	Language string
	Code     string
}

// CodeTab is a tabbed code comparison; entries keep label order.
type CodeTab struct {
	Entries []CodeTabEntry
}

// Image is an image reference, either a Markdown image or an Image component.
type Image struct {
	Src        string
	Alt        string
	Caption    string
	WithShadow bool
	// Inline marks a Markdown image inside running text.
	Inline bool
}

// Callout is an admonition component (Intro, Warn, Info).
type Callout struct {
	Variant  string
	Children []Block
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct{}

// Blockquote wraps block children.
type Blockquote struct {
	Children []Block
}

func (*Heading) Kind() Kind       { return KindHeading }
func (*Paragraph) Kind() Kind     { return KindParagraph }
func (*List) Kind() Kind          { return KindList }
func (*Link) Kind() Kind          { return KindLink }
func (*RawMarkup) Kind() Kind     { return KindRawMarkup }
func (*Text) Kind() Kind          { return KindText }
func (*Emphasis) Kind() Kind      { return KindEmphasis }
func (*Strong) Kind() Kind        { return KindStrong }
func (*CodeSpan) Kind() Kind      { return KindCodeSpan }
func (*CodeBlock) Kind() Kind     { return KindCodeBlock }
func (*CodeTab) Kind() Kind       { return KindCodeTab }
func (*Image) Kind() Kind         { return KindImage }
func (*Callout) Kind() Kind       { return KindCallout }
func (*ThematicBreak) Kind() Kind { return KindThematicBreak }
func (*Blockquote) Kind() Kind    { return KindBlockquote }

// Children returns the direct children of b, flattening list items.
func Children(b Block) []Block {
	switch n := b.(type) {
	case *Heading:
		return n.Children
	case *Paragraph:
		return n.Children
	case *Link:
		return n.Children
	case *Emphasis:
		return n.Children
	case *Strong:
		return n.Children
	case *Callout:
		return n.Children
	case *Blockquote:
		return n.Children
	case *List:
		var out []Block
		for _, item := range n.Items {
			out = append(out, item.Children...)
		}
		return out
	}
	return nil
}

// Walk visits blocks depth-first in document order. Returning false from fn
// skips the children of the visited block.
func Walk(blocks []Block, fn func(Block) bool) {
	for _, b := range blocks {
		if fn(b) {
			Walk(Children(b), fn)
		}
	}
}

// PlainText concatenates the literal text beneath blocks.
func PlainText(blocks []Block) string {
	var out []byte
	Walk(blocks, func(b Block) bool {
		switch n := b.(type) {
		case *Text:
			out = append(out, n.Value...)
			if n.SoftBreak || n.HardBreak {
				out = append(out, ' ')
			}
		case *CodeSpan:
			out = append(out, n.Code...)
		case *Image:
			out = append(out, n.Alt...)
		}
		return true
	})
	return string(out)
}
