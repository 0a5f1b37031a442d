// Package frontmatter splits documentation sources into their YAML front
// matter block and body, and maps the block onto the fixed Metadata schema.
package frontmatter

import (
	"bytes"
	"errors"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMissingClosingDelimiter indicates the document opened a front matter block
// but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter has no closing delimiter")

// ErrInvalidYAML indicates the front matter block is not a YAML mapping.
var ErrInvalidYAML = errors.New("front matter is not a YAML mapping")

// Style captures the newline shape of the source so Join can rebuild it.
type Style struct {
	Newline            string
	HasTrailingNewline bool
	BOM                bool
}

// Parts is a source file split at its front matter delimiters.
type Parts struct {
	// Raw is the YAML between the delimiters, without the delimiter lines.
	Raw []byte
	// Body is everything after the closing delimiter line.
	Body []byte
	// Present reports whether the source started with a front matter block.
	Present bool
	Style   Style
}

// BodyLineOffset is the number of file lines that precede the body, so that
// fileLine = BodyLineOffset() + bodyLine.
func (p Parts) BodyLineOffset() int {
	if !p.Present {
		return 0
	}
	return 2 + bytes.Count(p.Raw, []byte("\n"))
}

// Split separates the `---` delimited front matter from the body.
//
// A source that does not start with the delimiter has no front matter and the
// whole input is the body. An opening delimiter without a closing one is a
// MalformedFrontMatter error wrapping ErrMissingClosingDelimiter.
func Split(content []byte) (Parts, error) {
	style := detectStyle(content)
	if style.BOM {
		content = content[len(utf8BOM):]
	}
	nl := style.Newline

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return Parts{Body: content, Style: style}, nil
	}
	rest := content[len(open):]

	// Empty block: the closing delimiter immediately follows the opening one.
	if bytes.HasPrefix(rest, open) {
		return Parts{Raw: []byte{}, Body: rest[len(open):], Present: true, Style: style}, nil
	}
	if bytes.Equal(rest, []byte(delimiter)) {
		return Parts{Raw: []byte{}, Body: []byte{}, Present: true, Style: style}, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return Parts{
			Raw:     rest[:idx+len(nl)],
			Body:    rest[idx+len(closeSeq):],
			Present: true,
			Style:   style,
		}, nil
	}

	// Closing delimiter as the very last line without a trailing newline.
	closeAtEOF := []byte(nl + delimiter)
	if bytes.HasSuffix(rest, closeAtEOF) {
		return Parts{
			Raw:     rest[:len(rest)-len(delimiter)],
			Body:    []byte{},
			Present: true,
			Style:   style,
		}, nil
	}

	return Parts{Style: style}, Malformed(ErrMissingClosingDelimiter, "front matter delimiters are unbalanced")
}

// Join reassembles a source file from its parts.
func (p Parts) Join() []byte {
	var out []byte
	if p.Style.BOM {
		out = append(out, utf8BOM...)
	}
	if !p.Present {
		return append(out, p.Body...)
	}

	nl := p.Style.Newline
	if nl == "" {
		nl = "\n"
	}
	out = append(out, delimiter+nl...)
	out = append(out, p.Raw...)
	out = append(out, delimiter+nl...)
	out = append(out, p.Body...)
	return out
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, Malformed(errors.Join(ErrInvalidYAML, err), "front matter is not valid YAML")
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Malformed builds the MalformedFrontMatter error for a document. The
// document is skipped; the build continues.
func Malformed(cause error, message string) error {
	return ferrors.FrontMatterError(message).WithCause(cause).Build()
}

// IsMalformed reports whether err is a MalformedFrontMatter error.
func IsMalformed(err error) bool {
	return ferrors.HasCategory(err, ferrors.CategoryFrontMatter)
}

func detectStyle(content []byte) Style {
	style := Style{Newline: "\n", BOM: bytes.HasPrefix(content, utf8BOM)}
	if idx := bytes.IndexByte(content, '\n'); idx > 0 && content[idx-1] == '\r' {
		style.Newline = "\r\n"
	}
	style.HasTrailingNewline = len(content) > 0 && content[len(content)-1] == '\n'
	return style
}
