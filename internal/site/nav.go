package site

import "sort"

// NavItem is one sidebar entry.
type NavItem struct {
	Title     string
	Canonical string
}

// NavSection groups pages that share a category. Uncategorized pages form a
// section with an empty Category that sorts first.
type NavSection struct {
	Category string
	Items    []NavItem
}

// BuildNav groups pages by their category front matter. Sections are sorted
// by category name and items by title, then canonical path.
func BuildNav(pages []*Page) []NavSection {
	index := make(map[string]int)
	var sections []NavSection
	for _, p := range pages {
		cat := p.Doc.Metadata.Category
		i, ok := index[cat]
		if !ok {
			i = len(sections)
			index[cat] = i
			sections = append(sections, NavSection{Category: cat})
		}
		sections[i].Items = append(sections[i].Items, NavItem{Title: p.Doc.Title, Canonical: p.Doc.Canonical})
	}

	sort.Slice(sections, func(i, j int) bool { return sections[i].Category < sections[j].Category })
	for _, s := range sections {
		sort.SliceStable(s.Items, func(i, j int) bool {
			if s.Items[i].Title != s.Items[j].Title {
				return s.Items[i].Title < s.Items[j].Title
			}
			return s.Items[i].Canonical < s.Items[j].Canonical
		})
	}
	return sections
}
