package linkverify

import (
	"io"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/route"
)

// Verifier checks rendered pages against the set of site paths that exist.
type Verifier struct {
	baseURL string
	known   map[string]bool
}

// NewVerifier returns a Verifier that accepts the given site paths: page
// canonical paths and asset URLs.
func NewVerifier(baseURL string, known []string) (*Verifier, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid base URL").WithContext("base_url", baseURL).Build()
	}
	v := &Verifier{baseURL: baseURL, known: make(map[string]bool, len(known))}
	for _, k := range known {
		v.known[route.Normalize(k)] = true
	}
	return v, nil
}

// Verify parses the HTML of the page at canonical and returns every internal
// link whose target is not a known site path.
func (v *Verifier) Verify(canonical string, r io.Reader) ([]*Link, error) {
	links, err := ExtractLinksFromReader(r, v.baseURL)
	if err != nil {
		return nil, err
	}
	page := &url.URL{Path: strings.TrimSuffix(route.Normalize(canonical), "/") + "/"}

	var broken []*Link
	for _, l := range links {
		if !ShouldVerifyLink(l) {
			continue
		}
		u, err := url.Parse(l.URL)
		if err != nil {
			broken = append(broken, l)
			continue
		}
		target := page.ResolveReference(&url.URL{Path: u.Path}).Path
		if u.Path == "" || v.exists(target) {
			continue
		}
		broken = append(broken, l)
	}
	return broken, nil
}

func (v *Verifier) exists(p string) bool {
	p = route.Normalize(p)
	if v.known[p] {
		return true
	}
	if path.Base(p) == "index.html" {
		return v.known[route.Normalize(path.Dir(p))]
	}
	return false
}
