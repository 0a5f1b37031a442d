// Package config loads docsite.yaml: environment files are applied first,
// ${VAR} references are expanded, defaults are filled in and the result is
// validated.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "docsite.yaml"

// CurrentVersion is the configuration schema version written by Init.
const CurrentVersion = "1"

// ErrNotFound indicates the configuration file does not exist.
var ErrNotFound = stderrors.New("configuration file not found")

// Config is the root of docsite.yaml.
type Config struct {
	Version string        `yaml:"version"`
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	History HistoryConfig `yaml:"history"`
	Serve   ServeConfig   `yaml:"serve"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title string `yaml:"title"`
	// BaseURL is the public origin used for canonical links, e.g. https://docs.example.com.
	BaseURL string `yaml:"base_url,omitempty"`
	// BasePath prefixes every derived canonical path, e.g. /docs.
	BasePath string `yaml:"base_path,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// ContentConfig selects the source files.
type ContentConfig struct {
	Dir     string   `yaml:"dir"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// OutputConfig controls where pages are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
	// Clean removes the output directory before writing.
	Clean bool `yaml:"clean"`
}

// BuildConfig tunes the pipeline.
type BuildConfig struct {
	// Workers bounds concurrent document parsing. Zero means one per CPU.
	Workers int `yaml:"workers"`
	// VerifyLinks checks hrefs in rendered pages before they are written.
	VerifyLinks bool `yaml:"verify_links"`
	// FailOnWarnings turns any diagnostic into a failed build.
	FailOnWarnings bool `yaml:"fail_on_warnings"`
}

// HistoryConfig controls the SQLite build history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	Addr     string `yaml:"addr"`
	Debounce string `yaml:"debounce"`
}

// DebounceDuration parses Debounce; validation guarantees it is well formed.
func (s ServeConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(s.Debounce)
	if err != nil {
		return defaultDebounce
	}
	return d
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	// #nosec G304 -- configuration path is chosen by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithCause(fmt.Errorf("%w: %s", ErrNotFound, path)).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.WithContext("path", path)
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// Parse decodes configuration bytes after expanding ${VAR} references.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles applies .env then .env.local. Existing process variables win.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", name, err)
		}
	}
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Site.Title = "My Documentation"
	example.Site.BaseURL = "${DOCSITE_BASE_URL}"
	example.Content.Exclude = []string{"drafts/**"}
	example.Build.Workers = 0
	example.Build.VerifyLinks = true
	example.History.Enabled = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").WithContext("path", path).Build()
	}
	return nil
}
