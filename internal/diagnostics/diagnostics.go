// Package diagnostics defines the non-fatal problems collected during a build
// and reported together at the end so authors can fix every file in one pass.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Code is a stable, machine-parseable diagnostic identifier. Codes are only
// ever appended.
type Code string

const (
	CodeMalformedFrontMatter   Code = "MALFORMED_FRONT_MATTER"
	CodeMalformedContent       Code = "MALFORMED_CONTENT"
	CodeBrokenLink             Code = "BROKEN_LINK"
	CodeDuplicateCanonicalPath Code = "DUPLICATE_CANONICAL_PATH"
	CodeUnreadableFile         Code = "UNREADABLE_FILE"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one reported problem. Lines are 1-based file lines; zero
// means the problem applies to the whole file.
type Diagnostic struct {
	Code      Code     `json:"code"`
	Severity  Severity `json:"severity"`
	Path      string   `json:"path"`
	StartLine int      `json:"start_line,omitempty"`
	EndLine   int      `json:"end_line,omitempty"`
	Target    string   `json:"target,omitempty"`
	Message   string   `json:"message"`
}

// String renders the diagnostic as "path:start-end: CODE: message".
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Path)
	switch {
	case d.StartLine > 0 && d.EndLine > d.StartLine:
		fmt.Fprintf(&b, ":%d-%d", d.StartLine, d.EndLine)
	case d.StartLine > 0:
		fmt.Fprintf(&b, ":%d", d.StartLine)
	}
	fmt.Fprintf(&b, ": %s: %s", d.Code, d.Message)
	if d.Target != "" {
		fmt.Fprintf(&b, " (%s)", d.Target)
	}
	return b.String()
}

// Err converts the diagnostic into a classified error for logging.
func (d Diagnostic) Err() error {
	category := ferrors.CategoryContent
	switch d.Code {
	case CodeMalformedFrontMatter:
		category = ferrors.CategoryFrontMatter
	case CodeBrokenLink:
		category = ferrors.CategoryLink
	case CodeDuplicateCanonicalPath:
		category = ferrors.CategoryBuild
	case CodeUnreadableFile:
		category = ferrors.CategoryFileSystem
	}
	severity := ferrors.SeverityWarning
	if d.Severity == SeverityError {
		severity = ferrors.SeverityError
	}
	b := ferrors.NewError(category, d.Message).
		WithSeverity(severity).
		WithContext("code", string(d.Code)).
		WithContext("path", d.Path)
	if d.StartLine > 0 {
		b = b.WithContext("start_line", d.StartLine).WithContext("end_line", d.EndLine)
	}
	if d.Target != "" {
		b = b.WithContext("target", d.Target)
	}
	return b.Build()
}

// Sort orders diagnostics by path, line, then code.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.Code < b.Code
	})
}

// Collector accumulates diagnostics from concurrent workers.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add records diagnostics.
func (c *Collector) Add(ds ...Diagnostic) {
	if len(ds) == 0 {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, ds...)
	c.mu.Unlock()
}

// Items returns a sorted copy of everything collected.
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	c.mu.Unlock()
	Sort(out)
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CountByCode tallies diagnostics per code.
func CountByCode(ds []Diagnostic) map[Code]int {
	out := make(map[Code]int)
	for _, d := range ds {
		out[d.Code]++
	}
	return out
}
