// Package render turns assembled pages into HTML documents.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/components"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/site"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("render").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/*.tmpl"))

// Options controls page rendering.
type Options struct {
	SiteTitle string
	// BaseURL is prepended to canonical paths in <link rel="canonical">.
	BaseURL string
	// Lang is the document language, "en" by default.
	Lang    string
	Version string
	// BasePath prefixes relative asset URLs, matching where assets are copied.
	BasePath string
}

// Renderer renders pages of one site.
type Renderer struct {
	opts Options
}

// New returns a Renderer.
func New(opts Options) *Renderer {
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	return &Renderer{opts: opts}
}

type navItem struct {
	Title     string
	Canonical string
	Href      string
}

type navSection struct {
	Category string
	Items    []navItem
}

type layoutData struct {
	Lang         string
	Title        string
	SiteTitle    string
	Description  string
	Keywords     []string
	Canonical    string
	CanonicalURL string
	Version      string
	Nav          []navSection
	Content      template.HTML
}

// Page renders p as a complete HTML document including the sidebar for s.
func (r *Renderer) Page(s *site.Site, p *site.Page) ([]byte, error) {
	content, err := r.Blocks(p, p.Doc.Blocks)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", p.Doc.RelPath, err)
	}

	meta := p.Doc.Metadata
	description := meta.Description
	if description == "" {
		description = meta.Summary
	}
	data := layoutData{
		Lang:         r.opts.Lang,
		Title:        p.Doc.Title,
		SiteTitle:    r.opts.SiteTitle,
		Description:  description,
		Keywords:     meta.Keywords,
		Canonical:    p.Doc.Canonical,
		CanonicalURL: strings.TrimSuffix(r.opts.BaseURL, "/") + p.Doc.Canonical,
		Version:      r.opts.Version,
		Content:      content,
	}
	for _, sec := range s.Nav {
		ns := navSection{Category: sec.Category}
		for _, it := range sec.Items {
			ns.Items = append(ns.Items, navItem{Title: it.Title, Canonical: it.Canonical, Href: it.Canonical})
		}
		data.Nav = append(data.Nav, ns)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("render layout for %s: %w", p.Doc.RelPath, err)
	}
	return buf.Bytes(), nil
}

// Blocks renders a block sequence belonging to p.
func (r *Renderer) Blocks(p *site.Page, blocks []markdown.Block) (template.HTML, error) {
	w := &writer{page: p, basePath: r.opts.BasePath}
	w.blocks(blocks, false)
	if w.err != nil {
		return "", w.err
	}
	// #nosec G203 -- assembled from escaped fragments.
	return template.HTML(w.buf.String()), nil
}

type writer struct {
	page     *site.Page
	basePath string
	buf      strings.Builder
	err      error
}

func (w *writer) html(s template.HTML, err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
	w.buf.WriteString(string(s))
}

func (w *writer) text(s string) {
	w.buf.WriteString(template.HTMLEscapeString(s))
}

func (w *writer) blocks(blocks []markdown.Block, tight bool) {
	for _, b := range blocks {
		w.block(b, tight)
	}
}

func (w *writer) nested(blocks []markdown.Block, tight bool) template.HTML {
	inner := &writer{page: w.page, basePath: w.basePath}
	inner.blocks(blocks, tight)
	if inner.err != nil && w.err == nil {
		w.err = inner.err
	}
	// #nosec G203 -- assembled from escaped fragments.
	return template.HTML(inner.buf.String())
}

func (w *writer) block(b markdown.Block, tight bool) {
	switch n := b.(type) {
	case *markdown.Heading:
		level := strconv.Itoa(min(max(n.Level, 1), 6))
		w.buf.WriteString("<h" + level + ` id="`)
		w.text(n.ID)
		w.buf.WriteString(`">`)
		w.blocks(n.Children, false)
		w.buf.WriteString("</h" + level + ">\n")
	case *markdown.Paragraph:
		if tight {
			w.blocks(n.Children, false)
			return
		}
		w.buf.WriteString("<p>")
		w.blocks(n.Children, false)
		w.buf.WriteString("</p>\n")
	case *markdown.List:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		w.buf.WriteString("<" + tag)
		if n.Ordered && n.Start > 1 {
			w.buf.WriteString(` start="` + strconv.Itoa(n.Start) + `"`)
		}
		w.buf.WriteString(">\n")
		for _, item := range n.Items {
			w.buf.WriteString("<li>")
			w.blocks(item.Children, n.Tight)
			w.buf.WriteString("</li>\n")
		}
		w.buf.WriteString("</" + tag + ">\n")
	case *markdown.Link:
		w.link(n)
	case *markdown.RawMarkup:
		if n.Escaped {
			w.buf.WriteString(`<pre class="malformed">`)
			w.text(n.Markup)
			w.buf.WriteString("</pre>\n")
			return
		}
		w.buf.WriteString(n.Markup)
	case *markdown.Text:
		w.text(n.Value)
		switch {
		case n.HardBreak:
			w.buf.WriteString("<br>\n")
		case n.SoftBreak:
			w.buf.WriteString("\n")
		}
	case *markdown.Emphasis:
		w.buf.WriteString("<em>")
		w.blocks(n.Children, false)
		w.buf.WriteString("</em>")
	case *markdown.Strong:
		w.buf.WriteString("<strong>")
		w.blocks(n.Children, false)
		w.buf.WriteString("</strong>")
	case *markdown.CodeSpan:
		w.buf.WriteString("<code>")
		w.text(n.Code)
		w.buf.WriteString("</code>")
	case *markdown.CodeBlock:
		w.html(components.CodeBlock(components.CodeBlockProps{Language: n.Language, Code: n.Code}))
		w.buf.WriteString("\n")
	case *markdown.CodeTab:
		entries := make([]components.TabEntry, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = components.TabEntry{Label: e.Label, Language: e.Language, Code: e.Code}
		}
		w.html(components.CodeTab(components.CodeTabProps{Entries: entries}))
		w.buf.WriteString("\n")
	case *markdown.Image:
		w.html(components.Image(components.ImageProps{
			Src:        resolveAsset(w.basePath, w.page, n.Src),
			Alt:        n.Alt,
			Caption:    n.Caption,
			WithShadow: n.WithShadow,
			Inline:     n.Inline,
		}))
	case *markdown.Callout:
		body := w.nested(n.Children, false)
		w.html(components.Callout(components.CalloutProps{Variant: n.Variant, Body: body}))
		w.buf.WriteString("\n")
	case *markdown.ThematicBreak:
		w.buf.WriteString("<hr>\n")
	case *markdown.Blockquote:
		w.buf.WriteString("<blockquote>\n")
		w.blocks(n.Children, false)
		w.buf.WriteString("</blockquote>\n")
	}
}

type linkData struct {
	Href     string
	Title    string
	External bool
	Body     template.HTML
}

// link renders a resolved link as an anchor and a broken one as its text.
func (w *writer) link(l *markdown.Link) {
	body := w.nested(l.Children, false)
	res := w.page.Link(l)
	if res.Broken {
		w.buf.WriteString(string(body))
		return
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "link", linkData{Href: res.Href, Title: l.Title, External: res.External, Body: body}); err != nil {
		w.html("", err)
		return
	}
	w.buf.Write(buf.Bytes())
}

// resolveAsset makes relative image sources absolute against the page's
// source directory so they match where assets are copied.
func resolveAsset(basePath string, p *site.Page, src string) string {
	if src == "" || strings.HasPrefix(src, "/") || strings.Contains(src, ":") || strings.HasPrefix(src, "#") {
		return src
	}
	return path.Join("/", basePath, path.Dir(p.Doc.RelPath), src)
}
