// Package site assembles parsed documents into pages: it owns the global
// canonical-path table, resolves cross-document links against it and groups
// pages into navigation sections.
package site

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// ErrDuplicateCanonicalPath indicates two or more documents claim the same
// canonical path.
var ErrDuplicateCanonicalPath = errors.New("duplicate canonical path")

// Collision is one canonical path claimed by several sources.
type Collision struct {
	Canonical string
	Sources   []string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s: %s", c.Canonical, strings.Join(c.Sources, ", "))
}

// PathTable maps canonical paths to documents. It is built once after every
// document has been parsed and is read-only afterwards.
type PathTable struct {
	byPath map[string]*docmodel.Document
	paths  []string
}

// BuildPathTable indexes docs by canonical path. Any collision fails the
// whole table; the returned error lists every colliding path and its sources.
func BuildPathTable(docs []*docmodel.Document) (*PathTable, error) {
	claims := make(map[string][]string, len(docs))
	table := &PathTable{byPath: make(map[string]*docmodel.Document, len(docs))}
	for _, d := range docs {
		claims[d.Canonical] = append(claims[d.Canonical], d.RelPath)
		if _, exists := table.byPath[d.Canonical]; !exists {
			table.byPath[d.Canonical] = d
			table.paths = append(table.paths, d.Canonical)
		}
	}

	collisions := CollisionsOf(claims)
	if len(collisions) > 0 {
		lines := make([]string, len(collisions))
		for i, c := range collisions {
			lines[i] = c.String()
		}
		return nil, ferrors.BuildError(fmt.Sprintf("%d canonical paths are claimed by more than one document", len(collisions))).
			WithCause(ErrDuplicateCanonicalPath).
			WithContext("paths", lines).
			WithContext("collisions", collisions).
			Build()
	}

	sort.Strings(table.paths)
	return table, nil
}

// CollisionsOf returns the sorted collisions in a canonical path → sources map.
func CollisionsOf(claims map[string][]string) []Collision {
	var out []Collision
	for canonical, sources := range claims {
		if len(sources) < 2 {
			continue
		}
		s := append([]string(nil), sources...)
		sort.Strings(s)
		out = append(out, Collision{Canonical: canonical, Sources: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

// Collisions extracts the collision list from a BuildPathTable error.
func Collisions(err error) []Collision {
	c, ok := ferrors.AsClassified(err)
	if !ok {
		return nil
	}
	v, _ := c.Context().Get("collisions")
	list, _ := v.([]Collision)
	return list
}

// Lookup returns the document at canonical.
func (t *PathTable) Lookup(canonical string) (*docmodel.Document, bool) {
	d, ok := t.byPath[canonical]
	return d, ok
}

// Paths returns every canonical path in sorted order.
func (t *PathTable) Paths() []string {
	return append([]string(nil), t.paths...)
}

// Len returns the number of documents in the table.
func (t *PathTable) Len() int {
	return len(t.paths)
}
