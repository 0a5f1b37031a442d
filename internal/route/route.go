// Package route maps source files to canonical paths and resolves link
// targets between documents. It never touches the filesystem.
package route

import (
	"path"
	"path/filepath"
	"strings"
)

// SourceExtensions are the file extensions treated as documentation sources.
var SourceExtensions = []string{".md", ".mdx"}

var indexNames = map[string]bool{"index": true, "readme": true, "_index": true}

// Normalize turns p into canonical form: forward slashes, a leading slash,
// cleaned, and no trailing slash except for the root.
func Normalize(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// IsIndex reports whether the source file is a directory index.
func IsIndex(relPath string) bool {
	base := path.Base(filepath.ToSlash(relPath))
	return indexNames[strings.ToLower(TrimSourceExt(base))]
}

// TrimSourceExt strips a recognized source extension.
func TrimSourceExt(p string) string {
	lower := strings.ToLower(p)
	for _, ext := range SourceExtensions {
		if strings.HasSuffix(lower, ext) {
			return p[:len(p)-len(ext)]
		}
	}
	return p
}

// Canonical resolves the canonical path of a document.
//
// A non-empty override (the `canonical` front matter key) wins and is only
// normalized. Otherwise the path is derived from relPath, the file path
// relative to the content root: the extension is dropped, index files map to
// their directory, and basePath is prefixed.
func Canonical(relPath, override, basePath string) string {
	if strings.TrimSpace(override) != "" {
		return Normalize(override)
	}

	rel := filepath.ToSlash(relPath)
	if IsIndex(rel) {
		rel = path.Dir(rel)
	} else {
		rel = TrimSourceExt(rel)
	}
	if rel == "." {
		rel = ""
	}
	return Normalize(path.Join(Normalize(basePath), rel))
}

// LinkBase is the directory that relative links in a document resolve
// against. Index documents resolve against their own path.
func LinkBase(canonical string, isIndex bool) string {
	if isIndex {
		return Normalize(canonical)
	}
	return path.Dir(Normalize(canonical))
}

// IsExternal reports whether target leaves the site: URL schemes such as
// https: or mailto:, and protocol-relative //host links.
func IsExternal(target string) bool {
	if strings.HasPrefix(target, "//") {
		return true
	}
	colon := strings.IndexByte(target, ':')
	if colon <= 0 {
		return false
	}
	slash := strings.IndexAny(target, "/?#")
	return slash < 0 || colon < slash
}

// Target is a link target split into its path and fragment.
type Target struct {
	Path     string
	Fragment string
}

// Split separates the fragment and drops any query string.
func Split(target string) Target {
	t := Target{Path: target}
	if i := strings.IndexByte(t.Path, '#'); i >= 0 {
		t.Fragment = t.Path[i+1:]
		t.Path = t.Path[:i]
	}
	if i := strings.IndexByte(t.Path, '?'); i >= 0 {
		t.Path = t.Path[:i]
	}
	return t
}

// Resolve turns an internal link path into an absolute canonical candidate.
// Source extensions and trailing index segments are removed so links written
// against files ("./variant.mdx", "../api/README.md") match canonical paths.
func Resolve(base, linkPath string) string {
	p := filepath.ToSlash(linkPath)
	if !strings.HasPrefix(p, "/") {
		p = path.Join(Normalize(base), p)
	}
	p = Normalize(p)
	if IsIndex(p) && p != "/" {
		p = path.Dir(p)
	} else {
		p = TrimSourceExt(p)
	}
	return Normalize(p)
}

// Href renders a resolved canonical path plus fragment as a link href.
func (t Target) Href(canonical string) string {
	if t.Fragment == "" {
		return canonical
	}
	return canonical + "#" + t.Fragment
}

// OutputFile maps a canonical path to the file written under the output
// root, e.g. /docs/variant -> docs/variant/index.html.
func OutputFile(canonical string) string {
	rel := strings.TrimPrefix(Normalize(canonical), "/")
	if rel == "" {
		return "index.html"
	}
	return path.Join(rel, "index.html")
}
