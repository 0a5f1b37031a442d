package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `short:"a" help:"Listen address (overrides serve.addr)"`
	Output  string `short:"o" help:"Output directory (overrides output.dir)"`
	Content string `help:"Content directory (overrides content.dir)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Serve.Addr = s.Addr
	}
	if s.Output != "" {
		cfg.Output.Dir = s.Output
	}
	if s.Content != "" {
		cfg.Content.Dir = s.Content
	}
	// A failing rebuild must not stop the preview.
	cfg.Build.FailOnWarnings = false

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc, closeStore, err := newBuildService(cfg, metrics.NewPrometheusRecorder(reg))
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := preview.New(preview.Options{
		Config:   cfg,
		Service:  svc,
		Registry: reg,
		OnBuild: func(res *build.BuildResult, _ error) {
			if err := printSummary(g, "text", res); err != nil {
				slog.Warn("Failed to print build summary", logfields.Error(err))
			}
		},
	})
	if err != nil {
		return err
	}
	return srv.Run(g.Ctx)
}
