package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/diagnostics"
)

// BuildService executes documentation builds.
type BuildService interface {
	// Run executes discover → parse → assemble → render → write → verify → report.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	Config *config.Config

	// DryRun runs the pipeline without writing output or history.
	DryRun bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	BuildID string
	Status  BuildStatus

	// Report is the JSON build report, also written as build-report.json.
	Report *Report

	OutputPath string

	// Documents is the number of discovered sources.
	Documents int
	// Pages is the number of rendered pages.
	Pages int
	// Written counts pages whose output file changed.
	Written int
	// Unchanged counts pages whose output file was left as is.
	Unchanged int
	Assets    int

	Diagnostics []diagnostics.Diagnostic

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates a build without diagnostics.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates pages were produced alongside diagnostics.
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates a fatal error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the context was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess reports whether pages were produced.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}
