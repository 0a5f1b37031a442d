package config

import (
	"runtime"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

const defaultDebounce = 300 * time.Millisecond

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Documentation"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}
	if cfg.Site.BasePath == "" {
		cfg.Site.BasePath = "/"
	}
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "./docs"
	}
	if len(cfg.Content.Include) == 0 {
		cfg.Content.Include = append([]string(nil), docs.DefaultInclude...)
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./site"
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = runtime.NumCPU()
	}
	if cfg.History.Path == "" {
		cfg.History.Path = ".docsite/history.db"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = "127.0.0.1:8080"
	}
	if cfg.Serve.Debounce == "" {
		cfg.Serve.Debounce = defaultDebounce.String()
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
