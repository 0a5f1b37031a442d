// Package components holds the presentational building blocks used to render
// content blocks. Every component is a pure function from a typed props value
// to escaped markup.
package components

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("components").ParseFS(templateFS, "templates/*.tmpl"))

func render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s component: %w", name, err)
	}
	// #nosec G203 -- output of html/template, already escaped.
	return template.HTML(buf.String()), nil
}

// ImageProps configures Image.
type ImageProps struct {
	// Src is the image URL. Unsafe schemes are neutralized by the template.
	Src string
	// Alt defaults to empty, marking the image decorative.
	Alt string
	// Caption, when non-empty, is rendered in a figcaption.
	Caption string
	// WithShadow adds the drop shadow class. Off by default.
	WithShadow bool
	// Inline renders a bare <img> that can sit inside a paragraph; Caption
	// becomes its title attribute.
	Inline bool
}

// Image renders an image figure, or a bare image when Inline is set.
func Image(p ImageProps) (template.HTML, error) {
	return render("image", p)
}

// TabEntry is one tab of a CodeTab.
type TabEntry struct {
	Label    string
	Language string
	Code     string
}

// CodeTabProps configures CodeTab. The first entry is the active tab.
type CodeTabProps struct {
	Entries []TabEntry
}

// CodeTab renders a tabbed code comparison with entries in order.
func CodeTab(p CodeTabProps) (template.HTML, error) {
	return render("codetab", p)
}

// Callout variants.
const (
	VariantIntro = "intro"
	VariantWarn  = "warn"
	VariantInfo  = "info"
)

// CalloutProps configures Callout. Body must already be rendered markup.
type CalloutProps struct {
	// Variant is one of intro, warn or info; anything else renders as info.
	Variant string
	Body    template.HTML
}

// Callout renders an admonition box around Body.
func Callout(p CalloutProps) (template.HTML, error) {
	switch p.Variant {
	case VariantIntro, VariantWarn, VariantInfo:
	default:
		p.Variant = VariantInfo
	}
	return render("callout", p)
}

// CodeBlockProps configures CodeBlock.
type CodeBlockProps struct {
	Language string
	Code     string
}

// CodeBlock renders a single code listing.
func CodeBlock(p CodeBlockProps) (template.HTML, error) {
	return render("codeblock", p)
}
