package build

import (
	"fmt"
	"io"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
)

// Formatter writes the end-of-build summary.
type Formatter interface {
	Format(w io.Writer, result *BuildResult) error
}

// NewFormatter returns the formatter for "text" or "json".
func NewFormatter(format string) Formatter {
	if format == "json" {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// TextFormatter prints diagnostics grouped by file followed by counts.
type TextFormatter struct{}

// Format outputs the summary in human-readable text.
func (f *TextFormatter) Format(w io.Writer, result *BuildResult) error {
	p := &printer{w: w}

	if len(result.Diagnostics) > 0 {
		current := ""
		for _, d := range result.Diagnostics {
			if d.Path != current {
				if current != "" {
					p.line("")
				}
				current = d.Path
				p.line("%s", current)
			}
			p.line("  %s %s", icon(d.Severity), strings.TrimSpace(strings.TrimPrefix(d.String(), d.Path+":")))
		}
		p.line("")
	}

	p.line("%s", strings.Repeat("━", 60))
	p.line("Results:")
	p.line("  %d source%s, %d page%s", result.Documents, pluralize(result.Documents), result.Pages, pluralize(result.Pages))
	if result.Written > 0 || result.Unchanged > 0 {
		p.line("  %d written, %d unchanged, %d asset%s", result.Written, result.Unchanged, result.Assets, pluralize(result.Assets))
	}
	counts := diagnostics.CountByCode(result.Diagnostics)
	for _, code := range []diagnostics.Code{
		diagnostics.CodeMalformedFrontMatter,
		diagnostics.CodeMalformedContent,
		diagnostics.CodeBrokenLink,
		diagnostics.CodeDuplicateCanonicalPath,
		diagnostics.CodeUnreadableFile,
	} {
		if n := counts[code]; n > 0 {
			p.line("  %d %s", n, code)
		}
	}
	p.line("")

	switch result.Status {
	case BuildStatusSuccess:
		p.line("✨ Build finished without diagnostics in %s.", result.Duration.Round(time.Millisecond))
	case BuildStatusWarning:
		p.line("⚠️  Build finished with %d diagnostic%s.", len(result.Diagnostics), pluralize(len(result.Diagnostics)))
	case BuildStatusCancelled:
		p.line("Build cancelled.")
	default:
		p.line("❌ Build failed.")
	}
	return p.err
}

// JSONFormatter prints the build report.
type JSONFormatter struct{}

// Format outputs the report as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, result *BuildResult) error {
	if result.Report == nil {
		return fmt.Errorf("build result has no report")
	}
	data, err := result.Report.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func icon(s diagnostics.Severity) string {
	if s == diagnostics.SeverityError {
		return "✗"
	}
	return "⚠"
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
