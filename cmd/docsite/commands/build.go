package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string `short:"o" help:"Output directory (overrides output.dir)"`
	Content string `help:"Content directory (overrides content.dir)"`
	Clean   bool   `help:"Remove the output directory contents before writing"`
	Format  string `short:"f" help:"Summary format" enum:"text,json" default:"text"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	b.apply(cfg)

	svc, closeStore, err := newBuildService(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer closeStore()

	res, runErr := svc.Run(g.Ctx, build.BuildRequest{Config: cfg})
	if err := printSummary(g, b.Format, res); err != nil {
		return err
	}
	return runErr
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		cfg.Output.Dir = b.Output
	}
	if b.Content != "" {
		cfg.Content.Dir = b.Content
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
}

// printSummary writes the text summary to stderr or the JSON report to stdout.
func printSummary(g *Global, format string, res *build.BuildResult) error {
	if res == nil {
		return nil
	}
	w := g.Stderr
	if format == "json" {
		w = g.Stdout
	}
	if err := build.NewFormatter(format).Format(w, res); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
