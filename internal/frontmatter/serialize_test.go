package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{
		"title":       "Variant",
		"description": "Variant data structures",
		"canonical":   "/docs/manual/latest/variant",
	}

	out1, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "canonical: /docs/manual/latest/variant\ndescription: Variant data structures\ntitle: Variant\n", string(out1))
}

func TestSerializeYAML_NewlineStyle_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"title": "one"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "title: one\r\n", string(out))
}

func TestSerializeYAML_QuotesAmbiguousStrings(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"id": "123", "name": "true"}, Style{})
	require.NoError(t, err)

	fields, err := ParseYAML(out)
	require.NoError(t, err)
	require.Equal(t, "123", fields["id"])
	require.Equal(t, "true", fields["name"])
}

func TestSerializeYAML_NestedMap_SortsKeysRecursively(t *testing.T) {
	fields := map[string]any{
		"extra": map[string]any{"b": 2, "a": 1},
	}

	out, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "extra:\n  a: 1\n  b: 2\n", string(out))
}

func TestRender_ProducesSplittableSource(t *testing.T) {
	m := Metadata{Title: "Record", Keywords: []string{"record", "object"}}

	src, err := Render(m, []byte("# Record\n"), Style{Newline: "\n"})
	require.NoError(t, err)

	parts, err := Split(src)
	require.NoError(t, err)
	require.Equal(t, []byte("# Record\n"), parts.Body)

	got, err := ParseMetadata(parts.Raw)
	require.NoError(t, err)
	require.Equal(t, "Record", got.Title)
	require.Equal(t, []string{"record", "object"}, got.Keywords)
}
