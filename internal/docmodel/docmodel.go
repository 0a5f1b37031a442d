// Package docmodel builds the immutable per-file Document: front matter,
// transformed body blocks, canonical path and the diagnostics raised while
// parsing.
package docmodel

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/route"
)

// Options controls parsing.
type Options struct {
	// BasePath prefixes every derived canonical path.
	BasePath string
}

// Document is one parsed source file. It is not modified after Parse returns.
type Document struct {
	// RelPath is the slash separated path relative to the content root.
	RelPath   string
	Canonical string
	// Title is the front matter title, or a title derived from the file name.
	Title          string
	Metadata       frontmatter.Metadata
	HadFrontMatter bool
	Blocks         []markdown.Block
	Diagnostics    []diagnostics.Diagnostic
	Fingerprint    string
}

// IsIndex reports whether the document is a directory index page.
func (d *Document) IsIndex() bool {
	return route.IsIndex(d.RelPath)
}

// Parse builds a Document from raw file content.
//
// Malformed front matter returns a CategoryFrontMatter classified error; the
// caller skips the document. Malformed body content never fails Parse, it is
// reported in Document.Diagnostics instead.
func Parse(relPath string, content []byte, opts Options) (*Document, error) {
	relPath = filepath.ToSlash(relPath)

	parts, err := frontmatter.Split(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFrontMatter, "failed to split front matter").
			WithContext("path", relPath).
			Build()
	}

	var meta frontmatter.Metadata
	if parts.Present {
		meta, err = frontmatter.ParseMetadata(parts.Raw)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFrontMatter, "failed to parse front matter").
				WithContext("path", relPath).
				Build()
		}
	}

	fingerprint, err := Fingerprint(meta, parts.Body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to fingerprint document").
			WithContext("path", relPath).
			Build()
	}

	res := markdown.Transform(parts.Body, markdown.Options{Path: relPath, LineOffset: parts.BodyLineOffset()})

	title := meta.Title
	if title == "" {
		title = FallbackTitle(relPath)
	}

	return &Document{
		RelPath:        relPath,
		Canonical:      route.Canonical(relPath, meta.Canonical, opts.BasePath),
		Title:          title,
		Metadata:       meta,
		HadFrontMatter: parts.Present,
		Blocks:         res.Blocks,
		Diagnostics:    res.Diagnostics,
		Fingerprint:    fingerprint,
	}, nil
}

// ParseFile reads root/relPath and parses it.
func ParseFile(root, relPath string, opts Options) (*Document, error) {
	full := filepath.Join(root, filepath.FromSlash(relPath))
	// #nosec G304 -- path comes from discovery under the configured content root.
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, errors.FileSystemError("failed to read document").
			WithCause(err).
			WithContext("path", filepath.ToSlash(relPath)).
			Build()
	}
	return Parse(relPath, content, opts)
}

// Fingerprint hashes the canonical front matter and body with mdfp so that
// unchanged sources produce identical fingerprints across builds.
func Fingerprint(meta frontmatter.Metadata, body []byte) (string, error) {
	fields := meta.Fields()
	delete(fields, mdfp.FingerprintField)

	fm := ""
	if len(fields) > 0 {
		serialized, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

var titleCaser = cases.Title(language.English)

// FallbackTitle derives a title from the file name: "getting-started.mdx"
// becomes "Getting Started". Index files take their directory's name; the
// root index is "Home".
func FallbackTitle(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	name := path.Base(route.TrimSourceExt(relPath))
	if route.IsIndex(relPath) {
		dir := path.Dir(relPath)
		if dir == "." || dir == "/" {
			return "Home"
		}
		name = path.Base(dir)
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

// MalformedFrontMatter converts a Parse failure into a diagnostic.
func MalformedFrontMatter(relPath string, err error) diagnostics.Diagnostic {
	msg := err.Error()
	if c, ok := errors.AsClassified(err); ok {
		msg = c.Message()
		if cause := c.Cause(); cause != nil {
			msg += ": " + cause.Error()
		}
	}
	return diagnostics.Diagnostic{
		Code:     diagnostics.CodeMalformedFrontMatter,
		Severity: diagnostics.SeverityWarning,
		Path:     filepath.ToSlash(relPath),
		Message:  msg,
	}
}
