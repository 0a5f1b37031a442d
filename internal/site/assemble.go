package site

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/route"
)

// Options controls assembly.
type Options struct {
	// BasePath is tried as a prefix for absolute link targets that do not
	// resolve as written.
	BasePath string
}

// LinkResolution is the outcome of resolving one Link.
type LinkResolution struct {
	// Href is the rendered destination. Empty when Broken.
	Href     string
	External bool
	Broken   bool
}

// Page is a document with its links resolved.
type Page struct {
	Doc   *docmodel.Document
	Links map[*markdown.Link]LinkResolution
}

// Canonical returns the page's canonical path.
func (p *Page) Canonical() string { return p.Doc.Canonical }

// Link returns how l resolved. Links not owned by the page are broken.
func (p *Page) Link(l *markdown.Link) LinkResolution {
	if r, ok := p.Links[l]; ok {
		return r
	}
	return LinkResolution{Broken: true}
}

// Site is the assembled page set.
type Site struct {
	Pages       []*Page
	Nav         []NavSection
	Table       *PathTable
	Diagnostics []diagnostics.Diagnostic
}

// Page returns the page at canonical.
func (s *Site) Page(canonical string) (*Page, bool) {
	for _, p := range s.Pages {
		if p.Doc.Canonical == canonical {
			return p, true
		}
	}
	return nil, false
}

// Assemble builds the path table, resolves every Link in every document and
// returns one Page per document sorted by canonical path. Each unresolvable
// link occurrence yields exactly one BROKEN_LINK diagnostic.
func Assemble(docs []*docmodel.Document, opts Options) (*Site, error) {
	table, err := BuildPathTable(docs)
	if err != nil {
		return nil, err
	}

	s := &Site{Table: table}
	for _, canonical := range table.Paths() {
		doc, _ := table.Lookup(canonical)
		page := &Page{Doc: doc, Links: make(map[*markdown.Link]LinkResolution)}
		markdown.Walk(doc.Blocks, func(b markdown.Block) bool {
			l, ok := b.(*markdown.Link)
			if !ok {
				return true
			}
			res := resolveLink(table, doc, l.Target, opts)
			page.Links[l] = res
			if res.Broken {
				s.Diagnostics = append(s.Diagnostics, diagnostics.Diagnostic{
					Code:      diagnostics.CodeBrokenLink,
					Severity:  diagnostics.SeverityWarning,
					Path:      doc.RelPath,
					StartLine: l.Line,
					Target:    l.Target,
					Message:   fmt.Sprintf("link target %q does not match any document", l.Target),
				})
				slog.Debug("Broken link", logfields.File(doc.RelPath), logfields.Target(l.Target))
			}
			return true
		})
		s.Pages = append(s.Pages, page)
	}
	s.Nav = BuildNav(s.Pages)
	diagnostics.Sort(s.Diagnostics)
	return s, nil
}

func resolveLink(table *PathTable, doc *docmodel.Document, target string, opts Options) LinkResolution {
	target = strings.TrimSpace(target)
	switch {
	case target == "":
		return LinkResolution{Broken: true}
	case route.IsExternal(target):
		return LinkResolution{Href: target, External: true}
	case strings.HasPrefix(target, "#"):
		return LinkResolution{Href: target}
	}

	t := route.Split(target)
	if t.Path == "" {
		return LinkResolution{Href: "#" + t.Fragment}
	}
	candidate := route.Resolve(route.LinkBase(doc.Canonical, doc.IsIndex()), t.Path)
	if _, ok := table.Lookup(candidate); ok {
		return LinkResolution{Href: t.Href(candidate)}
	}
	if opts.BasePath != "" && strings.HasPrefix(t.Path, "/") {
		prefixed := route.Resolve("/", route.Normalize(opts.BasePath)+route.Normalize(t.Path))
		if _, ok := table.Lookup(prefixed); ok {
			return LinkResolution{Href: t.Href(prefixed)}
		}
	}
	return LinkResolution{Broken: true}
}
