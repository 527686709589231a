// Package cli implements the studylog CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rcliao/studylog/internal/config"
	"github.com/rcliao/studylog/internal/kv"
	"github.com/rcliao/studylog/internal/logging"
	"github.com/rcliao/studylog/internal/store"
	"github.com/rcliao/studylog/internal/suggest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "studylog",
	Short: "A personal vocabulary and study log",
	Long:  "Record words, idioms and sentences with translations, search them, chart your activity and move the collection around as JSON.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.config/studylog/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $STUDYLOG_STORAGE_PATH or ~/.studylog/studylog.db)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// session is an opened store together with the config and logger it was built from.
type session struct {
	*store.Store
	cfg     *config.Config
	logger  *zap.Logger
	backend kv.Store
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.backend.Close()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func openStore(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	backend, err := kv.Open(cfg.Storage.Driver, cfg.StorageTarget())
	if err != nil {
		return nil, err
	}

	st := store.New(backend, store.WithKey(cfg.Storage.Key), store.WithLogger(logger))
	st.Load(ctx)

	return &session{Store: st, cfg: cfg, logger: logger, backend: backend}, nil
}

func (s *session) suggester(ctx context.Context) (*suggest.Client, error) {
	return suggest.NewFromConfig(ctx, s.cfg.Suggest, s.logger)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
