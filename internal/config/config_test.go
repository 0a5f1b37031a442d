package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, "site:\n  title: Docs\n"))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, "Docs", cfg.Site.Title)
	assert.Equal(t, "/", cfg.Site.BasePath)
	assert.Equal(t, "en", cfg.Site.Language)
	assert.Equal(t, "./docs", cfg.Content.Dir)
	assert.Equal(t, []string{"**/*.md", "**/*.mdx"}, cfg.Content.Include)
	assert.Equal(t, "./site", cfg.Output.Dir)
	assert.Equal(t, runtime.NumCPU(), cfg.Build.Workers)
	assert.Equal(t, "127.0.0.1:8080", cfg.Serve.Addr)
	assert.Equal(t, defaultDebounce, cfg.Serve.DebounceDuration())
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("DOCSITE_TEST_URL", "https://docs.example.com")
	cfg, err := Load(writeConfig(t, "site:\n  base_url: ${DOCSITE_TEST_URL}\nlogging:\n  level: DEBUG\n  format: json\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://docs.example.com", cfg.Site.BaseURL)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCSITE_DOTENV_TITLE=From Env\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOCSITE_DOTENV_TITLE") })

	cfg, err := Load(writeConfig(t, "site:\n  title: ${DOCSITE_DOTENV_TITLE}\n"))
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Site.Title)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = Load(writeConfig(t, "site:\n  titel: typo\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	tests := map[string]string{
		"version":   "version: \"9\"\n",
		"base url":  "site:\n  base_url: not-a-url\n",
		"base path": "site:\n  base_path: docs\n",
		"glob":      "content:\n  exclude: [\"[bad\"]\n",
		"same dirs": "content:\n  dir: ./out\noutput:\n  dir: out/\n",
		"debounce":  "serve:\n  debounce: soon\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation), err.Error())
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docsite.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "My Documentation", cfg.Site.Title)
	assert.True(t, cfg.Build.VerifyLinks)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, []string{"drafts/**"}, cfg.Content.Exclude)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.NoError(t, Init(path, true))
}

func TestNormalizeLogging(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat("logfmt"))
	assert.Equal(t, LogLevelError.SlogLevel().String(), "ERROR")
}
