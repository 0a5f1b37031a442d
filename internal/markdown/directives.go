package markdown

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	codeTabOpenRe = regexp.MustCompile(`^<CodeTab\s+labels=\{(.*)\}\s*>$`)
	calloutOpenRe = regexp.MustCompile(`^<(Intro|Warn|Info)>(.*)$`)
	attrRe        = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_-]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|\{([^}]*)\}))?`)
)

const codeTabClose = "</CodeTab>"

var (
	errLabelsSyntax = errors.New("expected labels={[\"...\", ...]}")
	errLabelsEmpty  = errors.New("labels must not be empty")
)

func parseLabels(openLine string) ([]string, error) {
	m := codeTabOpenRe.FindStringSubmatch(openLine)
	if m == nil {
		return nil, errLabelsSyntax
	}
	var labels []string
	if err := json.Unmarshal([]byte(m[1]), &labels); err != nil {
		return nil, errLabelsSyntax
	}
	if len(labels) == 0 {
		return nil, errLabelsEmpty
	}
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			return nil, errLabelsEmpty
		}
	}
	return labels, nil
}

// codeTab consumes a tabbed code directive starting at lines[start].
func (t *transformer) codeTab(lines []string, start, first int) (Block, int, bool) {
	end := -1
	var entries []CodeTabEntry
	for i := start + 1; i < len(lines); {
		if strings.TrimSpace(lines[i]) == codeTabClose {
			end = i
			break
		}
		f, info, ok := openFence(lines[i])
		if !ok {
			i++
			continue
		}
		var code []string
		closed := false
		j := i + 1
		for ; j < len(lines); j++ {
			if f.closedBy(lines[j]) {
				closed = true
				break
			}
			if strings.TrimSpace(lines[j]) == codeTabClose {
				break
			}
			code = append(code, f.content(lines[j]))
		}
		if !closed {
			if j == len(lines) {
				t.malformed(first, start, start, "CodeTab is missing its closing %s", codeTabClose)
				return rawRegion(lines, start, start), start + 1, true
			}
			t.malformed(first, start, j, "unterminated code fence inside CodeTab")
			return rawRegion(lines, start, j), j + 1, true
		}
		entries = append(entries, CodeTabEntry{Language: firstWord(info), Code: strings.Join(code, "\n")})
		i = j + 1
	}

	if end < 0 {
		t.malformed(first, start, start, "CodeTab is missing its closing %s", codeTabClose)
		return rawRegion(lines, start, start), start + 1, true
	}

	labels, err := parseLabels(strings.TrimSpace(lines[start]))
	if err != nil {
		t.malformed(first, start, end, "invalid CodeTab labels: %v", err)
		return rawRegion(lines, start, end), end + 1, true
	}
	if len(labels) != len(entries) {
		t.malformed(first, start, end, "CodeTab declares %d labels but contains %d code fences", len(labels), len(entries))
		return rawRegion(lines, start, end), end + 1, true
	}
	for i := range entries {
		entries[i].Label = labels[i]
	}
	return &CodeTab{Entries: entries}, end + 1, true
}

// image consumes a self-closing Image component, which may span lines.
func (t *transformer) image(lines []string, start, first int) (Block, int, bool) {
	end := -1
	for i := start; i < len(lines); i++ {
		if strings.Contains(lines[i], "/>") {
			end = i
			break
		}
	}
	if end < 0 {
		t.malformed(first, start, start, "Image component is not self-closed")
		return rawRegion(lines, start, start), start + 1, true
	}

	tag := strings.TrimSpace(strings.Join(lines[start:end+1], " "))
	tag = strings.TrimPrefix(tag, "<Image")
	if idx := strings.LastIndex(tag, "/>"); idx >= 0 {
		tag = tag[:idx]
	}
	attrs := parseAttrs(tag)
	src, ok := attrs["src"]
	if !ok || src == "" {
		t.malformed(first, start, end, "Image component requires a src attribute")
		return rawRegion(lines, start, end), end + 1, true
	}
	img := &Image{Src: src, Alt: attrs["alt"], Caption: attrs["caption"]}
	if v, ok := attrs["withShadow"]; ok {
		shadow, err := strconv.ParseBool(v)
		if err != nil {
			t.malformed(first, start, end, "Image withShadow must be true or false, got %q", v)
			return rawRegion(lines, start, end), end + 1, true
		}
		img.WithShadow = shadow
	}
	return img, end + 1, true
}

// parseAttrs reads JSX-style attributes. Bare attributes are "true"; braced
// string literals are unquoted.
func parseAttrs(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		name := m[1]
		switch {
		case m[2] != "" || strings.Contains(m[0], `""`):
			out[name] = m[2]
		case m[3] != "" || strings.Contains(m[0], `''`):
			out[name] = m[3]
		case m[4] != "":
			v := strings.TrimSpace(m[4])
			if unq, err := strconv.Unquote(v); err == nil {
				v = unq
			}
			out[name] = v
		default:
			out[name] = "true"
		}
	}
	return out
}

// callout consumes <Intro>, <Warn> or <Info> and transforms its body.
func (t *transformer) callout(lines []string, start, first int) (Block, int, bool) {
	m := calloutOpenRe.FindStringSubmatch(strings.TrimSpace(lines[start]))
	if m == nil {
		return nil, 0, false
	}
	variant, rest := m[1], m[2]
	closeTag := "</" + variant + ">"

	if before, ok := strings.CutSuffix(strings.TrimSpace(rest), closeTag); ok {
		return &Callout{Variant: strings.ToLower(variant), Children: t.blocks([]string{before}, first+start)}, start + 1, true
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.HasSuffix(strings.TrimSpace(lines[i]), closeTag) {
			end = i
			break
		}
	}
	if end < 0 {
		t.malformed(first, start, start, "%s is missing its closing %s", variant, closeTag)
		return rawRegion(lines, start, start), start + 1, true
	}

	inner := make([]string, 0, end-start+1)
	innerFirst := first + start + 1
	if strings.TrimSpace(rest) != "" {
		inner = append(inner, rest)
		innerFirst = first + start
	}
	inner = append(inner, lines[start+1:end]...)
	if last := strings.TrimSuffix(strings.TrimSpace(lines[end]), closeTag); last != "" {
		inner = append(inner, last)
	}
	return &Callout{Variant: strings.ToLower(variant), Children: t.blocks(inner, innerFirst)}, end + 1, true
}
