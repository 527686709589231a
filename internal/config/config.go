// Package config loads studylog configuration from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rcliao/studylog/internal/logging"
	"github.com/rcliao/studylog/internal/store"
)

const (
	envPrefix         = "STUDYLOG_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config is the full application configuration.
type Config struct {
	Storage StorageConfig  `koanf:"storage"`
	Server  ServerConfig   `koanf:"server"`
	Log     logging.Config `koanf:"log"`
	Suggest SuggestConfig  `koanf:"suggest"`
	Chart   ChartConfig    `koanf:"chart"`
}

// StorageConfig selects the persistent key-value backend.
type StorageConfig struct {
	Driver string `koanf:"driver"` // sqlite | postgres | memory
	Path   string `koanf:"path"`   // sqlite file
	DSN    Secret `koanf:"dsn"`    // postgres connection string
	Key    string `koanf:"key"`
}

// ServerConfig configures `studylog serve`.
type ServerConfig struct {
	Addr            string   `koanf:"addr"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// SuggestConfig configures the translation suggestion provider.
// An empty Provider disables suggestions.
type SuggestConfig struct {
	Provider  string   `koanf:"provider"` // gemini | ollama | openai
	Model     string   `koanf:"model"`
	APIKey    Secret   `koanf:"api_key"`
	BaseURL   string   `koanf:"base_url"`
	RateLimit float64  `koanf:"rate_limit"` // requests per second; 0 means 1, negative disables the limiter
	Burst     int      `koanf:"burst"`
	Timeout   Duration `koanf:"timeout"` // HTTP client timeout; 0 leaves it to the caller's context
}

// ChartConfig configures the activity chart.
type ChartConfig struct {
	WindowDays int `koanf:"window_days"`
}

// DefaultPath returns ~/.config/studylog/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "studylog", "config.yaml")
}

// DefaultDBPath returns ~/.studylog/studylog.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".studylog", "studylog.db")
}

// Load reads configuration with this precedence (highest first):
//  1. STUDYLOG_* environment variables (STUDYLOG_SUGGEST_API_KEY -> suggest.api_key)
//  2. the YAML file at path (DefaultPath when empty; a missing file is fine)
//  3. defaults
//
// A .env file in the working directory is loaded into the environment first.
// GEMINI_API_KEY or API_KEY fill suggest.api_key when nothing else set it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	content, err := readConfigFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// STUDYLOG_SERVER_SHUTDOWN_TIMEOUT -> server.shutdown_timeout
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultDBPath()
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = "lang_study_data"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	def := logging.NewDefaultConfig()
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Format
	}
	if cfg.Suggest.APIKey == "" {
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.Suggest.APIKey = Secret(v)
		} else if v := os.Getenv("API_KEY"); v != "" {
			cfg.Suggest.APIKey = Secret(v)
		}
	}
	if cfg.Suggest.Provider == "" && cfg.Suggest.APIKey != "" {
		cfg.Suggest.Provider = "gemini"
	}
	if cfg.Suggest.RateLimit == 0 {
		cfg.Suggest.RateLimit = 1
	}
	if cfg.Suggest.Burst == 0 {
		cfg.Suggest.Burst = 1
	}
	if cfg.Chart.WindowDays == 0 {
		cfg.Chart.WindowDays = 14
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q (valid: sqlite, postgres, memory)", c.Storage.Driver)
	}
	switch c.Suggest.Provider {
	case "", "gemini", "ollama", "openai":
	default:
		return fmt.Errorf("invalid suggest.provider %q (valid: gemini, ollama, openai)", c.Suggest.Provider)
	}
	if c.Chart.WindowDays < 1 || c.Chart.WindowDays > store.MaxWindowDays {
		return fmt.Errorf("chart.window_days must be between 1 and %d", store.MaxWindowDays)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// StorageTarget returns the path or DSN for the configured driver.
func (c *Config) StorageTarget() string {
	if c.Storage.Driver == "postgres" {
		return c.Storage.DSN.Value()
	}
	return c.Storage.Path
}
