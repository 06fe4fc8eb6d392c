package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vovakirdan/roomchat-go/internal/config"
	"github.com/vovakirdan/roomchat-go/roomchat"
)

// loadSettings layers flags over env over the config file.
func loadSettings(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("server") {
		cfg.Server = serverURL
	}
	if flags.Changed("name") {
		cfg.Name = userName
	}
	if flags.Changed("room") {
		cfg.Room = roomID
	}
	if flags.Changed("locale") {
		cfg.Locale = locale
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = logFile
	}
	return cfg, nil
}

// newLogger writes JSON logs to the configured file. Without a file it
// returns a no-op logger: the TUI owns the terminal.
func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	if lc.File == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(lc.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		zc.Level = level
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.OutputPaths = []string{lc.File}
	zc.ErrorOutputPaths = []string{lc.File}
	return zc.Build()
}

func newClient(cfg *config.Config, log *zap.Logger) (*roomchat.Client, error) {
	cc, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	client, err := roomchat.NewClient(cc)
	if err != nil {
		return nil, err
	}
	client.SetLogger(log)
	client.OnError(func(err error) {
		log.Warn("client error", zap.Error(err))
	})
	return client, nil
}
