package errors

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "link error", err: LinkError("broken").Build(), expected: 3},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "filesystem error", err: FileSystemError("unreadable").Build(), expected: 11},
		{name: "build error", err: BuildError("duplicate").Build(), expected: 11},
		{name: "storage error", err: StorageError("db").Build(), expected: 12},
		{name: "internal error", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified error", err: errors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	t.Run("lists paths in sorted order", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, nil)
		err := FileSystemError("unreadable source files").
			WithContext("paths", []string{"docs/b.md", "docs/a.md"}).
			Build()

		got := adapter.FormatError(err)
		want := "Error: unreadable source files\n  - docs/a.md\n  - docs/b.md"
		if got != want {
			t.Errorf("FormatError() = %q, want %q", got, want)
		}
	})

	t.Run("verbose shows category and cause", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(true, nil)
		err := WrapError(errors.New("boom"), CategoryRender, "render failed").Build()

		got := adapter.FormatError(err)
		if !strings.Contains(got, "[render:error]") || !strings.Contains(got, "boom") {
			t.Errorf("unexpected verbose output %q", got)
		}
	})

	t.Run("unclassified", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, nil)
		if got := adapter.FormatError(errors.New("plain")); got != "Error: plain" {
			t.Errorf("FormatError() = %q", got)
		}
	})
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewCLIErrorAdapter(false, logger).WithOutput(&out)

	assert.Equal(t, 0, a.Report(nil))
	assert.Empty(t, out.String())

	err := FileSystemError("2 source paths could not be read").
		WithContext("paths", []string{"z.md", "a.md"}).
		Build()
	assert.Equal(t, 11, a.Report(err))
	assert.Equal(t, "Error: 2 source paths could not be read\n  - a.md\n  - z.md\n", out.String())
}
