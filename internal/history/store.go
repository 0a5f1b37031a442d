// Package history persists a summary of every build in SQLite so that
// `docsite history` can show how diagnostics evolve over time.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a build ID has no record.
var ErrNotFound = errors.New("build not found")

// Record summarizes one build.
type Record struct {
	BuildID     string
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     string
	Pages       int
	Written     int
	Diagnostics int
	// SourceHash fingerprints the discovered source set.
	SourceHash string
	// Report is the JSON build report.
	Report []byte
}

// Store records and lists builds.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Get(ctx context.Context, buildID string) (Record, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
