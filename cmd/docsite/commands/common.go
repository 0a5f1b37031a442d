package commands

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/history"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// Global carries process-wide state shared by every command.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render the documentation site"`
	Check   CheckCmd   `cmd:"" help:"Run the build without writing output; exit 1 when diagnostics exist"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Serve   ServeCmd   `cmd:"" help:"Build, serve and rebuild on change"`
	History HistoryCmd `cmd:"" help:"List recent builds from the history store"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration and applies its logging section. A
// missing file at the default path falls back to the built-in defaults.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if !stderrors.Is(err, config.ErrNotFound) || !c.defaultConfigPath() {
			return nil, err
		}
		slog.Debug("No configuration file; using defaults", logfields.Path(c.Config))
		cfg = config.Default()
	}
	configureLogging(g.Stderr, cfg.Logging, c.Verbose)
	return cfg, nil
}

func (c *CLI) defaultConfigPath() bool {
	return c.Config == config.DefaultPath
}

// configureLogging swaps the default logger for the configured format and
// level. --verbose always wins over the configured level.
func configureLogging(w io.Writer, lc config.LoggingConfig, verbose bool) {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newBuildService wires the build service with the history store when
// enabled. The returned closer releases the store.
func newBuildService(cfg *config.Config, recorder metrics.Recorder) (*build.DefaultBuildService, func(), error) {
	svc := build.NewBuildService().WithRecorder(recorder)
	if !cfg.History.Enabled {
		return svc, func() {}, nil
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryStorage, "failed to open build history").
			WithContext("path", cfg.History.Path).
			Build()
	}
	return svc.WithHistory(store), func() { _ = store.Close() }, nil
}
