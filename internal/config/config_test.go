package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at temp dirs so neither a
// real config file nor a real .env leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Chdir(t.TempDir())
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, ".studylog", "studylog.db"), cfg.Storage.Path)
	assert.Equal(t, "lang_study_data", cfg.Storage.Key)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "", cfg.Suggest.Provider)
	assert.Equal(t, 14, cfg.Chart.WindowDays)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
storage:
  driver: memory
server:
  addr: ":9999"
  shutdown_timeout: 3s
log:
  level: debug
  format: json
suggest:
  provider: ollama
  model: llama3
chart:
  window_days: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "ollama", cfg.Suggest.Provider)
	assert.Equal(t, "llama3", cfg.Suggest.Model)
	assert.Equal(t, 7, cfg.Chart.WindowDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "server:\n  addr: \":9999\"\n")
	t.Setenv("STUDYLOG_SERVER_ADDR", ":7777")
	t.Setenv("STUDYLOG_SUGGEST_API_KEY", "sk-test")
	t.Setenv("STUDYLOG_SUGGEST_PROVIDER", "openai")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "sk-test", cfg.Suggest.APIKey.Value())
	assert.Equal(t, "openai", cfg.Suggest.Provider)
}

func TestLoadLegacyAPIKeyEnablesGemini(t *testing.T) {
	isolate(t)
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "legacy-key", cfg.Suggest.APIKey.Value())
	assert.Equal(t, "gemini", cfg.Suggest.Provider)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("STUDYLOG_CHART_WINDOW_DAYS=21\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STUDYLOG_CHART_WINDOW_DAYS") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 21, cfg.Chart.WindowDays)
}

func TestLoadRateLimit(t *testing.T) {
	isolate(t)

	cfg, err := Load(writeConfig(t, "suggest:\n  rate_limit: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Suggest.RateLimit, "zero falls back to the default")

	cfg, err = Load(writeConfig(t, "suggest:\n  rate_limit: -1\n"))
	require.NoError(t, err)
	assert.Equal(t, -1.0, cfg.Suggest.RateLimit, "negative is kept and disables the limiter")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "redis" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"unknown provider", func(c *Config) { c.Suggest.Provider = "bard" }},
		{"bad window", func(c *Config) { c.Chart.WindowDays = -3 }},
		{"window too large", func(c *Config) { c.Chart.WindowDays = 3_000_000 }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base().Validate())
}

func TestSecretRedacted(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "hunter2", s.Value())
}
