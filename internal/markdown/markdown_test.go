package markdown

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
)

func TestTransform_CodeTabTwoEntries(t *testing.T) {
	body := strings.Join([]string{
		`<CodeTab labels={["ReScript", "JS Output"]}>`,
		"```res example",
		"let x = 1",
		"```",
		"```js",
		"var x = 1;",
		"```",
		"</CodeTab>",
	}, "\n")

	res := Transform([]byte(body), Options{Path: "a.mdx"})
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Blocks, 1)

	tab, ok := res.Blocks[0].(*CodeTab)
	require.True(t, ok, "got %T", res.Blocks[0])
	assert.Equal(t, []CodeTabEntry{
		{Label: "ReScript", Language: "res", Code: "let x = 1"},
		{Label: "JS Output", Language: "js", Code: "var x = 1;"},
	}, tab.Entries)
}

func TestTransform_CodeTabLabelCountMismatch(t *testing.T) {
	body := strings.Join([]string{
		"# Title",
		"",
		`<CodeTab labels={["ReScript", "JS Output"]}>`,
		"```res",
		"let x = 1",
		"```",
		"</CodeTab>",
		"",
		"After.",
	}, "\n")

	res := Transform([]byte(body), Options{Path: "a.mdx", LineOffset: 4})
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, diagnostics.CodeMalformedContent, d.Code)
	assert.Equal(t, "a.mdx", d.Path)
	assert.Equal(t, 7, d.StartLine)
	assert.Equal(t, 11, d.EndLine)
	assert.Contains(t, d.Message, "2 labels")

	require.Len(t, res.Blocks, 3)
	assert.Equal(t, KindHeading, res.Blocks[0].Kind())
	raw, ok := res.Blocks[1].(*RawMarkup)
	require.True(t, ok)
	assert.True(t, raw.Escaped)
	assert.True(t, strings.HasPrefix(raw.Markup, "<CodeTab"))
	assert.True(t, strings.HasSuffix(raw.Markup, "</CodeTab>"))
	assert.Equal(t, KindParagraph, res.Blocks[2].Kind())
}

func TestTransform_CodeTabMalformedVariants(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantStart int
		wantEnd   int
		wantMsg   string
	}{
		{
			name:      "missing close",
			body:      "<CodeTab labels={[\"A\"]}>\n```js\nx\n```\n",
			wantStart: 1, wantEnd: 1,
			wantMsg: "missing its closing",
		},
		{
			name:      "unterminated fence",
			body:      "<CodeTab labels={[\"A\"]}>\n```js\nx\n</CodeTab>\n",
			wantStart: 1, wantEnd: 4,
			wantMsg: "unterminated code fence",
		},
		{
			name:      "bad labels",
			body:      "<CodeTab labels={A, B}>\n```js\nx\n```\n</CodeTab>\n",
			wantStart: 1, wantEnd: 5,
			wantMsg: "invalid CodeTab labels",
		},
		{
			name:      "empty labels",
			body:      "<CodeTab labels={[]}>\n</CodeTab>\n",
			wantStart: 1, wantEnd: 2,
			wantMsg: "must not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform([]byte(tt.body), Options{Path: "x.mdx"})
			require.Len(t, res.Diagnostics, 1)
			d := res.Diagnostics[0]
			assert.Equal(t, diagnostics.CodeMalformedContent, d.Code)
			assert.Equal(t, tt.wantStart, d.StartLine)
			assert.Equal(t, tt.wantEnd, d.EndLine)
			assert.Contains(t, d.Message, tt.wantMsg)
			assert.Zero(t, res.CountKind(KindCodeTab))
		})
	}
}

func TestTransform_MissingCloseContinuesParsing(t *testing.T) {
	body := "<CodeTab labels={[\"A\"]}>\n```js\nx\n```\n\nText after.\n"
	res := Transform([]byte(body), Options{})

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.CountKind(KindCodeBlock))
	assert.Equal(t, 1, res.CountKind(KindParagraph))
}

func TestTransform_CodeTabInsideFenceIsLiteral(t *testing.T) {
	body := "````md\n<CodeTab labels={[\"A\"]}>\n```js\nx\n```\n</CodeTab>\n````\n"
	res := Transform([]byte(body), Options{})

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Blocks, 1)
	code, ok := res.Blocks[0].(*CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "md", code.Language)
	assert.Contains(t, code.Code, "<CodeTab")
}

func TestTransform_CodeTabCountMatchesDirectives(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		labelGen := rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,8}`)
		n := rapid.IntRange(0, 6).Draw(t, "directives")

		var b strings.Builder
		var wantLabels [][]string
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "Paragraph %d.\n\n", i)
			labels := rapid.SliceOfN(labelGen, 1, 4).Draw(t, "labels")
			quoted := make([]string, len(labels))
			for j, l := range labels {
				quoted[j] = fmt.Sprintf("%q", l)
			}
			fmt.Fprintf(&b, "<CodeTab labels={[%s]}>\n", strings.Join(quoted, ", "))
			for j := range labels {
				fmt.Fprintf(&b, "```lang%d\ncode %d\n```\n", j, j)
			}
			b.WriteString("</CodeTab>\n\n")
			wantLabels = append(wantLabels, labels)
		}

		res := Transform([]byte(b.String()), Options{})
		if len(res.Diagnostics) != 0 {
			t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
		}
		var got [][]string
		Walk(res.Blocks, func(bl Block) bool {
			if tab, ok := bl.(*CodeTab); ok {
				labels := make([]string, len(tab.Entries))
				for i, e := range tab.Entries {
					labels[i] = e.Label
				}
				got = append(got, labels)
			}
			return true
		})
		if len(got) != n {
			t.Fatalf("got %d code tabs, want %d", len(got), n)
		}
		for i := range got {
			if strings.Join(got[i], "\x00") != strings.Join(wantLabels[i], "\x00") {
				t.Fatalf("tab %d labels = %v, want %v", i, got[i], wantLabels[i])
			}
		}
	})
}

func TestTransform_StandardMarkdown(t *testing.T) {
	body := strings.Join([]string{
		"# Getting Started",
		"",
		"Some *emphasis*, **strong**, `code` and a [link](./install.md#setup).",
		"",
		"- one",
		"- two",
		"",
		"1. first",
		"",
		"> quoted",
		"",
		"---",
		"",
		"```go",
		"package main",
		"```",
		"",
		"## Getting Started",
	}, "\n")

	res := Transform([]byte(body), Options{})
	require.Empty(t, res.Diagnostics)

	kinds := make([]Kind, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		kinds = append(kinds, b.Kind())
	}
	assert.Equal(t, []Kind{
		KindHeading, KindParagraph, KindList, KindList, KindBlockquote,
		KindThematicBreak, KindCodeBlock, KindHeading,
	}, kinds)

	h1 := res.Blocks[0].(*Heading)
	assert.Equal(t, 1, h1.Level)
	assert.Equal(t, "getting-started", h1.ID)
	assert.Equal(t, "getting-started-1", res.Blocks[7].(*Heading).ID)

	para := res.Blocks[1].(*Paragraph)
	var link *Link
	Walk(para.Children, func(b Block) bool {
		if l, ok := b.(*Link); ok {
			link = l
		}
		return true
	})
	require.NotNil(t, link)
	assert.Equal(t, "./install.md#setup", link.Target)
	assert.Equal(t, "link", PlainText(link.Children))
	assert.Equal(t, 3, link.Line)
	assert.Equal(t, 1, res.CountKind(KindEmphasis))
	assert.Equal(t, 1, res.CountKind(KindStrong))
	assert.Equal(t, 1, res.CountKind(KindCodeSpan))

	ul := res.Blocks[2].(*List)
	assert.False(t, ul.Ordered)
	assert.True(t, ul.Tight)
	assert.Len(t, ul.Items, 2)
	assert.True(t, res.Blocks[3].(*List).Ordered)

	code := res.Blocks[6].(*CodeBlock)
	assert.Equal(t, "go", code.Language)
	assert.Equal(t, "package main", code.Code)
}

func TestTransform_LinkLineAfterDirective(t *testing.T) {
	body := "<Info>\nSee [b](./b).\n</Info>\n\nThen [c](/c).\n"
	res := Transform([]byte(body), Options{LineOffset: 3})

	var lines []int
	Walk(res.Blocks, func(b Block) bool {
		if l, ok := b.(*Link); ok {
			lines = append(lines, l.Line)
		}
		return true
	})
	assert.Equal(t, []int{5, 8}, lines)
}

func TestTransform_ImageComponent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Image
	}{
		{
			name: "with caption and shadow",
			body: `<Image src="/static/a.png" caption="A caption" withShadow={true} />`,
			want: Image{Src: "/static/a.png", Caption: "A caption", WithShadow: true},
		},
		{
			name: "bare boolean",
			body: `<Image src='/b.png' withShadow />`,
			want: Image{Src: "/b.png", WithShadow: true},
		},
		{
			name: "multi line braced string",
			body: "<Image\n  src={\"/c.png\"}\n  withShadow={false}\n/>",
			want: Image{Src: "/c.png"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform([]byte(tt.body), Options{})
			require.Empty(t, res.Diagnostics)
			require.Len(t, res.Blocks, 1)
			img, ok := res.Blocks[0].(*Image)
			require.True(t, ok)
			assert.Equal(t, tt.want, *img)
		})
	}
}

func TestTransform_ImageComponentErrors(t *testing.T) {
	res := Transform([]byte("<Image caption=\"no src\" />\n\nok\n"), Options{})
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "src")
	assert.Equal(t, 1, res.CountKind(KindParagraph))

	res = Transform([]byte(`<Image src="/a.png" withShadow={maybe} />`), Options{})
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "withShadow")

	res = Transform([]byte("<Image src=\"/a.png\"\n\nmore"), Options{})
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "not self-closed")
}

func TestTransform_Callouts(t *testing.T) {
	body := strings.Join([]string{
		"<Intro>This is the intro.</Intro>",
		"",
		"<Warn>",
		"",
		"Be **careful**.",
		"",
		`<CodeTab labels={["A"]}>`,
		"```js",
		"x",
		"```",
		"</CodeTab>",
		"",
		"</Warn>",
	}, "\n")

	res := Transform([]byte(body), Options{})
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Blocks, 2)

	intro := res.Blocks[0].(*Callout)
	assert.Equal(t, "intro", intro.Variant)
	assert.Equal(t, "This is the intro.", PlainText(intro.Children))

	warn := res.Blocks[1].(*Callout)
	assert.Equal(t, "warn", warn.Variant)
	require.Len(t, warn.Children, 2)
	assert.Equal(t, KindParagraph, warn.Children[0].Kind())
	assert.Equal(t, KindCodeTab, warn.Children[1].Kind())
}

func TestTransform_UnterminatedCallout(t *testing.T) {
	res := Transform([]byte("<Warn>\n\nstill parsed\n"), Options{LineOffset: 2})
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 3, res.Diagnostics[0].StartLine)
	assert.Equal(t, 1, res.CountKind(KindParagraph))
}

func TestTransform_HTMLBlockIsRawMarkup(t *testing.T) {
	res := Transform([]byte("<div class=\"note\">\nhello\n</div>\n"), Options{})
	require.Len(t, res.Blocks, 1)
	raw, ok := res.Blocks[0].(*RawMarkup)
	require.True(t, ok)
	assert.False(t, raw.Escaped)
	assert.Contains(t, raw.Markup, `<div class="note">`)
}

func TestTransform_HeadingIDsUniqueAcrossDirectives(t *testing.T) {
	body := "# Hello, World!\n\n<Warn>\n# Hello, World!\n</Warn>\n\n## !!!\n"
	res := Transform([]byte(body), Options{})
	require.Empty(t, res.Diagnostics)

	var ids []string
	Walk(res.Blocks, func(b Block) bool {
		if h, ok := b.(*Heading); ok {
			ids = append(ids, h.ID)
		}
		return true
	})
	assert.Equal(t, []string{"hello-world", "hello-world-1", "heading"}, ids)
}

func TestTransform_UnterminatedFenceInCodeTabResumesAfterClose(t *testing.T) {
	body := strings.Join([]string{
		"Intro.",
		`<CodeTab labels={["A"]}>`,
		"```js",
		"let a = 1",
		"</CodeTab>",
		"## After",
		"",
		"[a link](./y)",
		"",
		"```js",
		"later()",
		"```",
	}, "\n")
	res := Transform([]byte(body), Options{})

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 2, res.Diagnostics[0].StartLine)
	assert.Equal(t, 5, res.Diagnostics[0].EndLine)
	assert.Equal(t, 1, res.CountKind(KindRawMarkup))
	assert.Equal(t, 1, res.CountKind(KindHeading))
	assert.Equal(t, 1, res.CountKind(KindLink))
	require.Equal(t, 1, res.CountKind(KindCodeBlock))

	var raw *RawMarkup
	var code *CodeBlock
	Walk(res.Blocks, func(b Block) bool {
		switch n := b.(type) {
		case *RawMarkup:
			raw = n
		case *CodeBlock:
			code = n
		}
		return true
	})
	assert.True(t, raw.Escaped)
	assert.True(t, strings.HasSuffix(raw.Markup, "</CodeTab>"))
	assert.Equal(t, "later()", code.Code)
}

func TestTransform_IndentedDirectiveIsCode(t *testing.T) {
	body := "Example:\n\n    <CodeTab labels={[\"A\"]}>\n    <Image src=\"x.png\" />\n"
	res := Transform([]byte(body), Options{})

	require.Empty(t, res.Diagnostics)
	assert.Zero(t, res.CountKind(KindCodeTab))
	assert.Zero(t, res.CountKind(KindImage))
	require.Equal(t, 1, res.CountKind(KindCodeBlock))
	code := res.Blocks[1].(*CodeBlock)
	assert.Contains(t, code.Code, "<CodeTab")
}

func TestTransform_EscapesAndEntities(t *testing.T) {
	res := Transform([]byte("a \\* b &copy; &lt;div&gt; &#65; [x](./a\\_b \"T&amp;C\")\n"), Options{})
	require.Len(t, res.Blocks, 1)
	para := res.Blocks[0].(*Paragraph)

	assert.Equal(t, "a * b © <div> A x", strings.TrimSpace(PlainText(para.Children)))
	var link *Link
	Walk(para.Children, func(b Block) bool {
		if l, ok := b.(*Link); ok {
			link = l
		}
		return true
	})
	require.NotNil(t, link)
	assert.Equal(t, "./a_b", link.Target)
	assert.Equal(t, "T&C", link.Title)
}

func TestTransform_CodeSpanKeepsEscapes(t *testing.T) {
	res := Transform([]byte("`\\* &copy;`\n"), Options{})
	var code *CodeSpan
	Walk(res.Blocks, func(b Block) bool {
		if c, ok := b.(*CodeSpan); ok {
			code = c
		}
		return true
	})
	require.NotNil(t, code)
	assert.Equal(t, `\* &copy;`, code.Code)
}

func TestTransform_MarkdownImageIsInline(t *testing.T) {
	res := Transform([]byte("See ![logo](img/logo\\_1.png) here.\n"), Options{})
	var img *Image
	Walk(res.Blocks, func(b Block) bool {
		if i, ok := b.(*Image); ok {
			img = i
		}
		return true
	})
	require.NotNil(t, img)
	assert.True(t, img.Inline)
	assert.Equal(t, "img/logo_1.png", img.Src)
}
