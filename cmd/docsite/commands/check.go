package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// ErrDiagnostics is returned by check when the build reported diagnostics.
var ErrDiagnostics = errors.New("diagnostics found")

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Content string `help:"Content directory (overrides content.dir)"`
	Format  string `short:"f" help:"Summary format" enum:"text,json" default:"text"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if c.Content != "" {
		cfg.Content.Dir = c.Content
	}
	// check never fails on warnings itself; diagnostics map to exit code 1 below.
	cfg.Build.FailOnWarnings = false

	res, runErr := build.NewBuildService().
		WithRecorder(metrics.NoopRecorder{}).
		Run(g.Ctx, build.BuildRequest{Config: cfg, DryRun: true})
	if err := printSummary(g, c.Format, res); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if n := len(res.Diagnostics); n > 0 {
		return fmt.Errorf("%w: %d", ErrDiagnostics, n)
	}
	return nil
}
