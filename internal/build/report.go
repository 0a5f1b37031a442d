package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
)

// ReportFileName is the machine readable report written to the output root.
const ReportFileName = "build-report.json"

// Report captures the counts and issues of one build.
type Report struct {
	SchemaVersion int       `json:"schema_version"`
	BuildID       string    `json:"build_id"`
	Generator     string    `json:"generator"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Outcome       string    `json:"outcome"`
	// Error is the fatal error message, empty unless Outcome is failed.
	Error string `json:"error,omitempty"`

	Documents int `json:"documents"`
	Pages     int `json:"pages"`
	Written   int `json:"written"`
	Unchanged int `json:"unchanged"`
	Assets    int `json:"assets"`

	// StageDurations holds milliseconds per stage.
	StageDurations map[string]int64         `json:"stage_durations_ms"`
	Counts         map[diagnostics.Code]int `json:"counts"`
	Issues         []diagnostics.Diagnostic `json:"issues"`
}

func newReport(buildID, generator string, start time.Time) *Report {
	return &Report{
		SchemaVersion:  1,
		BuildID:        buildID,
		Generator:      generator,
		Start:          start,
		StageDurations: make(map[string]int64),
		Counts:         make(map[diagnostics.Code]int),
		Issues:         []diagnostics.Diagnostic{},
	}
}

func (r *Report) stage(name string, d time.Duration) {
	r.StageDurations[name] = d.Milliseconds()
}

// finish records the issues and derives the outcome from status.
func (r *Report) finish(status BuildStatus, issues []diagnostics.Diagnostic, err error) {
	r.End = time.Now()
	r.Outcome = string(status)
	if err != nil {
		r.Error = err.Error()
	}
	if issues != nil {
		r.Issues = issues
	}
	r.Counts = diagnostics.CountByCode(r.Issues)
}

// Summary returns a single line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("documents=%d pages=%d written=%d unchanged=%d assets=%d issues=%d duration=%s outcome=%s",
		r.Documents, r.Pages, r.Written, r.Unchanged, r.Assets, len(r.Issues),
		r.End.Sub(r.Start).Truncate(time.Millisecond), r.Outcome)
}

// JSON returns the indented report.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report json: %w", err)
	}
	return data, nil
}

// Persist writes build-report.json into root atomically.
func (r *Report) Persist(root string) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(root, ReportFileName), data)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory for %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
