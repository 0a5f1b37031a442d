package frontmatter

import (
	"fmt"
	"maps"
	"strings"
)

// Key is one of the recognized front matter keys.
type Key string

const (
	KeyTitle       Key = "title"
	KeyDescription Key = "description"
	KeyCanonical   Key = "canonical"
	KeyID          Key = "id"
	KeyKeywords    Key = "keywords"
	KeySummary     Key = "summary"
	KeyCategory    Key = "category"
	KeyName        Key = "name"
)

// KnownKeys lists the recognized keys in schema order.
var KnownKeys = []Key{KeyTitle, KeyDescription, KeyCanonical, KeyID, KeyKeywords, KeySummary, KeyCategory, KeyName}

// IsKnown reports whether key belongs to the fixed schema.
func IsKnown(key string) bool {
	for _, k := range KnownKeys {
		if string(k) == key {
			return true
		}
	}
	return false
}

// Metadata is the typed view of a document's front matter.
//
// Optional string fields are empty when absent. Keys outside the schema are
// kept verbatim in Extra.
type Metadata struct {
	Title       string
	Description string
	Canonical   string
	ID          string
	Keywords    []string
	Summary     string
	Category    string
	Name        string
	Extra       map[string]any

	// present records keys that appeared in the source, including empty ones.
	present map[Key]bool
}

// Has reports whether key was present in the source or has a non-empty value.
func (m Metadata) Has(key Key) bool {
	if m.present[key] {
		return true
	}
	switch key {
	case KeyKeywords:
		return len(m.Keywords) > 0
	default:
		return m.stringField(key) != ""
	}
}

// ParseMetadata parses a raw YAML block into Metadata.
//
// Known keys must hold scalars (keywords: a list of scalars or a comma
// separated string). A mapping or list under a scalar key is a
// MalformedFrontMatter error.
func ParseMetadata(raw []byte) (Metadata, error) {
	fields, err := ParseYAML(raw)
	if err != nil {
		return Metadata{}, err
	}
	return FromFields(fields)
}

// FromFields maps a decoded front matter map onto the schema.
func FromFields(fields map[string]any) (Metadata, error) {
	m := Metadata{present: make(map[Key]bool)}
	for key, value := range fields {
		if !IsKnown(key) {
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[key] = value
			continue
		}

		k := Key(key)
		m.present[k] = true
		if k == KeyKeywords {
			kws, err := parseKeywords(value)
			if err != nil {
				return Metadata{}, Malformed(err, "front matter keywords must be a list or a comma separated string")
			}
			m.Keywords = kws
			continue
		}

		s, err := scalarString(value)
		if err != nil {
			return Metadata{}, Malformed(fmt.Errorf("key %q: %w", key, err), fmt.Sprintf("front matter key %q must be a scalar", key))
		}
		m.setStringField(k, s)
	}
	return m, nil
}

// Fields converts Metadata back into a plain map suitable for SerializeYAML.
func (m Metadata) Fields() map[string]any {
	out := make(map[string]any, len(KnownKeys)+len(m.Extra))
	maps.Copy(out, m.Extra)
	for _, k := range KnownKeys {
		if !m.Has(k) {
			continue
		}
		if k == KeyKeywords {
			kws := make([]string, len(m.Keywords))
			copy(kws, m.Keywords)
			out[string(k)] = kws
			continue
		}
		out[string(k)] = m.stringField(k)
	}
	return out
}

func (m Metadata) stringField(k Key) string {
	switch k {
	case KeyTitle:
		return m.Title
	case KeyDescription:
		return m.Description
	case KeyCanonical:
		return m.Canonical
	case KeyID:
		return m.ID
	case KeySummary:
		return m.Summary
	case KeyCategory:
		return m.Category
	case KeyName:
		return m.Name
	}
	return ""
}

func (m *Metadata) setStringField(k Key, v string) {
	switch k {
	case KeyTitle:
		m.Title = v
	case KeyDescription:
		m.Description = v
	case KeyCanonical:
		m.Canonical = v
	case KeyID:
		m.ID = v
	case KeySummary:
		m.Summary = v
	case KeyCategory:
		m.Category = v
	case KeyName:
		m.Name = v
	}
}

func scalarString(v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return vv, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(vv), nil
	case fmt.Stringer:
		return vv.String(), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}

// parseKeywords accepts a list or a comma separated string and returns the
// de-duplicated keywords in first-seen order.
func parseKeywords(v any) ([]string, error) {
	var raw []string
	switch vv := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		raw = strings.Split(vv, ",")
	case []any:
		for _, item := range vv {
			s, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			raw = append(raw, s)
		}
	case []string:
		raw = vv
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
