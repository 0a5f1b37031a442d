// Package markdown transforms a document body into a sequence of content
// blocks. Standard Markdown is parsed with goldmark; the tabbed code directive
// and presentational components are recognized by a line scanner that runs
// first and hands the remaining chunks to goldmark.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
)

// Options controls Transform.
type Options struct {
	// Path is reported in diagnostics.
	Path string
	// LineOffset is the number of file lines that precede the body, so that
	// diagnostics carry file line numbers rather than body line numbers.
	LineOffset int
}

// Result is the outcome of transforming one body.
type Result struct {
	Blocks      []Block
	Diagnostics []diagnostics.Diagnostic
}

// CountKind returns how many blocks of kind k appear anywhere in the result.
func (r Result) CountKind(k Kind) int {
	n := 0
	Walk(r.Blocks, func(b Block) bool {
		if b.Kind() == k {
			n++
		}
		return true
	})
	return n
}

type transformer struct {
	opts Options
	md   goldmark.Markdown
	// ids is shared by every chunk of the body so heading ids stay unique
	// across directives.
	ids   parser.IDs
	diags []diagnostics.Diagnostic
}

// Transform converts body into blocks. Malformed regions are reported as
// MALFORMED_CONTENT diagnostics, emitted as escaped raw markup, and parsing
// continues with the next line.
func Transform(body []byte, opts Options) Result {
	t := &transformer{
		opts: opts,
		md:   goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID())),
		ids:  parser.NewContext().IDs(),
	}
	blocks := t.blocks(splitLines(body), 1)
	return Result{Blocks: blocks, Diagnostics: t.diags}
}

func splitLines(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	lines := strings.Split(string(body), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// blocks scans lines, where lines[0] is body line first.
func (t *transformer) blocks(lines []string, first int) []Block {
	var out []Block
	chunkStart := -1
	flush := func(end int) {
		if chunkStart < 0 {
			return
		}
		out = append(out, t.markdown(lines[chunkStart:end], first+chunkStart)...)
		chunkStart = -1
	}

	var open *fence
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if open != nil {
			if open.closedBy(line) {
				open = nil
			}
			continue
		}
		if f, _, ok := openFence(line); ok {
			open = &f
			if chunkStart < 0 {
				chunkStart = i
			}
			continue
		}

		trimmed, ok := directiveLine(line)
		var (
			b    Block
			next int
			hit  bool
		)
		switch {
		case !ok:
		case strings.HasPrefix(trimmed, "<CodeTab"):
			b, next, hit = t.codeTab(lines, i, first)
		case strings.HasPrefix(trimmed, "<Image"):
			b, next, hit = t.image(lines, i, first)
		default:
			b, next, hit = t.callout(lines, i, first)
		}
		if !hit {
			if chunkStart < 0 {
				chunkStart = i
			}
			continue
		}
		flush(i)
		out = append(out, b)
		i = next - 1
	}
	flush(len(lines))
	return out
}

// directiveLine returns the trimmed line when it may open a directive. Lines
// indented by a tab or four or more spaces are indented code and never do.
func directiveLine(line string) (string, bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || (indent < len(line) && line[indent] == '\t') {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (t *transformer) malformed(first, startIdx, endIdx int, format string, args ...any) {
	t.diags = append(t.diags, diagnostics.Diagnostic{
		Code:      diagnostics.CodeMalformedContent,
		Severity:  diagnostics.SeverityWarning,
		Path:      t.opts.Path,
		StartLine: first + startIdx + t.opts.LineOffset,
		EndLine:   first + endIdx + t.opts.LineOffset,
		Message:   fmt.Sprintf(format, args...),
	})
}

func rawRegion(lines []string, startIdx, endIdx int) *RawMarkup {
	return &RawMarkup{Markup: strings.Join(lines[startIdx:endIdx+1], "\n"), Escaped: true}
}
