package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	if cfg.Version != CurrentVersion {
		return invalid("version", cfg.Version, fmt.Sprintf("unsupported configuration version (expected %s)", CurrentVersion))
	}
	if cfg.Site.BaseURL != "" {
		u, err := url.Parse(cfg.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("site.base_url", cfg.Site.BaseURL, "must be an absolute URL")
		}
	}
	if !strings.HasPrefix(cfg.Site.BasePath, "/") {
		return invalid("site.base_path", cfg.Site.BasePath, "must start with /")
	}
	for _, p := range append(append([]string{}, cfg.Content.Include...), cfg.Content.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return invalid("content.include/exclude", p, "invalid glob pattern")
		}
	}
	if cleanPath(cfg.Content.Dir) == cleanPath(cfg.Output.Dir) {
		return invalid("output.dir", cfg.Output.Dir, "must differ from content.dir")
	}
	if d, err := time.ParseDuration(cfg.Serve.Debounce); err != nil || d < 0 {
		return invalid("serve.debounce", cfg.Serve.Debounce, "must be a non-negative duration")
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return invalid("history.path", cfg.History.Path, "required when history is enabled")
	}
	return nil
}

func invalid(field, value, msg string) error {
	return errors.ValidationError(fmt.Sprintf("%s: %s", field, msg)).
		WithContext("field", field).
		WithContext("value", value).
		Build()
}

func cleanPath(p string) string {
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(p), "./"), "/")
}
