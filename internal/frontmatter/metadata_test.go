package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseMetadata_KnownKeys(t *testing.T) {
	raw := []byte(`title: Variant
description: "Variant data structures in ReScript"
canonical: "/docs/manual/latest/variant"
id: variant
keywords: [variant, constructor]
summary: Tagged unions
category: language-features
name: Variant
`)

	m, err := ParseMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, "Variant", m.Title)
	assert.Equal(t, "Variant data structures in ReScript", m.Description)
	assert.Equal(t, "/docs/manual/latest/variant", m.Canonical)
	assert.Equal(t, "variant", m.ID)
	assert.Equal(t, []string{"variant", "constructor"}, m.Keywords)
	assert.Equal(t, "Tagged unions", m.Summary)
	assert.Equal(t, "language-features", m.Category)
	assert.Equal(t, "Variant", m.Name)
	assert.Empty(t, m.Extra)
}

func TestParseMetadata_UnknownKeysAreOpaque(t *testing.T) {
	m, err := ParseMetadata([]byte("title: A\nbadge: beta\nsidebar:\n  order: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "beta", m.Extra["badge"])
	assert.Equal(t, map[string]any{"order": 2}, m.Extra["sidebar"])

	fields := m.Fields()
	assert.Equal(t, "beta", fields["badge"])
	assert.Equal(t, "A", fields["title"])
}

func TestParseMetadata_KeywordsCommaSeparated(t *testing.T) {
	m, err := ParseMetadata([]byte("keywords: \"a, b, a ,c\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, m.Keywords)
}

func TestParseMetadata_WrongShapeIsMalformed(t *testing.T) {
	_, err := ParseMetadata([]byte("title:\n  nested: true\n"))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))

	_, err = ParseMetadata([]byte("keywords:\n  a: b\n"))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestMetadata_EmptyValuesSurviveRoundTrip(t *testing.T) {
	m, err := ParseMetadata([]byte("summary: \"\"\n"))
	require.NoError(t, err)
	assert.True(t, m.Has(KeySummary))
	assert.False(t, m.Has(KeyTitle))
	assert.Equal(t, map[string]any{"summary": ""}, m.Fields())
}

func TestMetadata_RoundTripProperty(t *testing.T) {
	word := rapid.StringMatching(`[A-Za-z][A-Za-z0-9_-]{0,15}`)

	rapid.Check(t, func(rt *rapid.T) {
		fields := map[string]any{}
		for _, k := range KnownKeys {
			if !rapid.Bool().Draw(rt, "has_"+string(k)) {
				continue
			}
			if k == KeyKeywords {
				fields[string(k)] = rapid.SliceOfNDistinct(word, 1, 5, rapid.ID[string]).Draw(rt, "keywords")
				continue
			}
			fields[string(k)] = word.Draw(rt, string(k))
		}
		extra := rapid.MapOfN(rapid.StringMatching(`x_[a-z]{1,8}`), word, 0, 3).Draw(rt, "extra")
		for k, v := range extra {
			fields[k] = v
		}

		raw, err := SerializeYAML(fields, Style{Newline: "\n"})
		require.NoError(rt, err)

		m, err := ParseMetadata(raw)
		require.NoError(rt, err)
		require.Equal(rt, fields, m.Fields())
	})
}
