package route

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		override string
		basePath string
		want     string
	}{
		{name: "override wins", relPath: "manual/variant.mdx", override: "/docs/manual/latest/variant", want: "/docs/manual/latest/variant"},
		{name: "override is normalized", relPath: "a.md", override: "docs//x/", want: "/docs/x"},
		{name: "derived from file path", relPath: "manual/variant.mdx", want: "/manual/variant"},
		{name: "base path prefix", relPath: "manual/variant.mdx", basePath: "/docs", want: "/docs/manual/variant"},
		{name: "index collapses to directory", relPath: "manual/index.md", basePath: "docs", want: "/docs/manual"},
		{name: "README collapses to directory", relPath: "api/README.md", want: "/api"},
		{name: "root index", relPath: "index.mdx", want: "/"},
		{name: "windows separators", relPath: `guide\intro.md`, want: "/guide/intro"},
		{name: "whitespace override ignored", relPath: "a.md", override: "  ", want: "/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.relPath, tt.override, tt.basePath))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		link string
		want string
	}{
		{name: "sibling", base: "/", link: "./x", want: "/x"},
		{name: "sibling in section", base: "/docs/manual/latest", link: "./variant", want: "/docs/manual/latest/variant"},
		{name: "parent", base: "/docs/manual/latest", link: "../v8/record", want: "/docs/manual/v8/record"},
		{name: "absolute", base: "/docs", link: "/api/belt", want: "/api/belt"},
		{name: "file extension", base: "/docs", link: "./record.mdx", want: "/docs/record"},
		{name: "index file", base: "/docs", link: "./api/README.md", want: "/docs/api"},
		{name: "trailing slash", base: "/docs", link: "./api/", want: "/docs/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.base, tt.link))
		})
	}
}

func TestLinkBase(t *testing.T) {
	assert.Equal(t, "/docs/manual", LinkBase("/docs/manual/variant", false))
	assert.Equal(t, "/docs/manual", LinkBase("/docs/manual", true))
	assert.Equal(t, "/", LinkBase("/y", false))
}

func TestIsExternal(t *testing.T) {
	assert.True(t, IsExternal("https://rescript-lang.org"))
	assert.True(t, IsExternal("mailto:team@example.com"))
	assert.True(t, IsExternal("//cdn.example.com/a.js"))
	assert.False(t, IsExternal("./variant"))
	assert.False(t, IsExternal("/docs/a:b"))
	assert.False(t, IsExternal("#section"))
}

func TestSplitAndHref(t *testing.T) {
	target := Split("./variant?x=1#constructor-arguments")
	assert.Equal(t, "./variant", target.Path)
	assert.Equal(t, "constructor-arguments", target.Fragment)
	assert.Equal(t, "/docs/variant#constructor-arguments", target.Href("/docs/variant"))
	assert.Equal(t, "/docs/variant", Split("./variant").Href("/docs/variant"))
}

func TestOutputFile(t *testing.T) {
	assert.Equal(t, "index.html", OutputFile("/"))
	assert.Equal(t, "docs/variant/index.html", OutputFile("/docs/variant"))
}

func TestNormalize_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.StringMatching(`[a-z./\\]{0,24}`).Draw(rt, "path")
		n := Normalize(p)

		if !strings.HasPrefix(n, "/") {
			rt.Fatalf("normalized path %q lacks leading slash", n)
		}
		if n != "/" && strings.HasSuffix(n, "/") {
			rt.Fatalf("normalized path %q has trailing slash", n)
		}
		if Normalize(n) != n {
			rt.Fatalf("normalize is not idempotent for %q", p)
		}
	})
}
