package docmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

func TestParse_FrontMatterAndBody(t *testing.T) {
	content := []byte("---\ntitle: Installation\ncanonical: /docs/install\nkeywords: [setup, install]\ncategory: Guides\n---\n# Install\n\nRun it.\n")

	doc, err := Parse("guides/install.mdx", content, Options{})
	require.NoError(t, err)

	assert.Equal(t, "guides/install.mdx", doc.RelPath)
	assert.Equal(t, "/docs/install", doc.Canonical)
	assert.Equal(t, "Installation", doc.Title)
	assert.Equal(t, []string{"setup", "install"}, doc.Metadata.Keywords)
	assert.Equal(t, "Guides", doc.Metadata.Category)
	assert.True(t, doc.HadFrontMatter)
	assert.NotEmpty(t, doc.Fingerprint)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, markdown.KindHeading, doc.Blocks[0].Kind())
}

func TestParse_DerivedCanonicalAndFallbackTitle(t *testing.T) {
	doc, err := Parse("guides/getting-started.md", []byte("Hello\n"), Options{BasePath: "/docs"})
	require.NoError(t, err)

	assert.Equal(t, "/docs/guides/getting-started", doc.Canonical)
	assert.Equal(t, "Getting Started", doc.Title)
	assert.False(t, doc.HadFrontMatter)
	assert.False(t, doc.IsIndex())
}

func TestParse_DiagnosticsUseFileLines(t *testing.T) {
	content := []byte("---\ntitle: T\n---\n<CodeTab labels={[\"A\", \"B\"]}>\n```js\nx\n```\n</CodeTab>\n")

	doc, err := Parse("a.mdx", content, Options{})
	require.NoError(t, err)
	require.Len(t, doc.Diagnostics, 1)
	d := doc.Diagnostics[0]
	assert.Equal(t, diagnostics.CodeMalformedContent, d.Code)
	assert.Equal(t, "a.mdx", d.Path)
	assert.Equal(t, 4, d.StartLine)
	assert.Equal(t, 8, d.EndLine)
}

func TestParse_MalformedFrontMatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		isErr   error
	}{
		{name: "missing closing delimiter", content: "---\ntitle: x\n# body\n", isErr: frontmatter.ErrMissingClosingDelimiter},
		{name: "invalid yaml", content: "---\ntitle: [unclosed\n---\nbody\n", isErr: frontmatter.ErrInvalidYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.md", []byte(tt.content), Options{})
			require.Error(t, err)
			require.ErrorIs(t, err, tt.isErr)
			assert.True(t, frontmatter.IsMalformed(err))

			d := MalformedFrontMatter("bad.md", err)
			assert.Equal(t, diagnostics.CodeMalformedFrontMatter, d.Code)
			assert.Equal(t, "bad.md", d.Path)
			assert.NotEmpty(t, d.Message)
		})
	}
}

func TestParseFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "api", "README.md"), []byte("# API\n"), 0o600))

	doc, err := ParseFile(root, "api/README.md", Options{})
	require.NoError(t, err)
	assert.Equal(t, "/api", doc.Canonical)
	assert.Equal(t, "Api", doc.Title)
	assert.True(t, doc.IsIndex())

	_, err = ParseFile(root, "missing.md", Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	meta, err := frontmatter.ParseMetadata([]byte("title: A\n"))
	require.NoError(t, err)

	fp1, err := Fingerprint(meta, []byte("body\n"))
	require.NoError(t, err)
	fp2, err := Fingerprint(meta, []byte("body\n"))
	require.NoError(t, err)
	fp3, err := Fingerprint(meta, []byte("changed\n"))
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
}

func TestFallbackTitle(t *testing.T) {
	tests := map[string]string{
		"getting-started.mdx":     "Getting Started",
		"guides/my_first_app.md":  "My First App",
		"index.md":                "Home",
		"reference/api/_index.md": "Api",
	}
	for in, want := range tests {
		assert.Equal(t, want, FallbackTitle(in), in)
	}
}
