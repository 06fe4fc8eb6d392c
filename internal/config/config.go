// Package config loads the roomchat application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/roomchat-go/roomchat"
)

// Config holds all roomchat CLI configuration.
type Config struct {
	// Server is the WebSocket base URL.
	Server string `yaml:"server"`

	// Identity used to pre-fill the login form.
	Name string `yaml:"name"`
	Room string `yaml:"room"`

	// Locale for client notices ("en" or "pt").
	Locale string `yaml:"locale"`

	// RoomlessPath dials /ws/<name> for single-room servers.
	RoomlessPath bool `yaml:"roomless_path"`

	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TimeoutsConfig holds per-operation timeouts as duration strings.
type TimeoutsConfig struct {
	Handshake string `yaml:"handshake"`
	Read      string `yaml:"read"` // empty or "0" disables it
	Write     string `yaml:"write"`
	Upload    string `yaml:"upload"`
}

// ReconnectConfig mirrors roomchat.ReconnectPolicy.
type ReconnectConfig struct {
	InitialDelay string  `yaml:"initial_delay"`
	Multiplier   float64 `yaml:"multiplier"`
	MaxDelay     string  `yaml:"max_delay"`
	MaxAttempts  int     `yaml:"max_attempts"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty disables logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: "ws://localhost:10000",
		Room:   roomchat.DefaultRoom,
		Locale: "en",
		Timeouts: TimeoutsConfig{
			Handshake: "10s",
			Write:     "10s",
			Upload:    "30s",
		},
		Reconnect: ReconnectConfig{
			InitialDelay: "3s",
			Multiplier:   2,
			MaxDelay:     "30s",
			MaxAttempts:  8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/roomchat/config.yaml, falling back to
// the OS user config directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "roomchat", "config.yaml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".roomchat", "config.yaml")
	}
	return filepath.Join(dir, "roomchat", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ROOMCHAT_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("ROOMCHAT_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("ROOMCHAT_ROOM"); v != "" {
		c.Room = v
	}
	if v := os.Getenv("ROOMCHAT_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := os.Getenv("ROOMCHAT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// ClientConfig converts the file form into a validated roomchat.Config.
func (c *Config) ClientConfig() (roomchat.Config, error) {
	out := roomchat.DefaultConfig()
	out.ServerURL = c.Server
	out.RoomlessPath = c.RoomlessPath
	if c.Locale != "" {
		out.Locale = c.Locale
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"timeouts.handshake", c.Timeouts.Handshake, &out.HandshakeTimeout},
		{"timeouts.read", c.Timeouts.Read, &out.ReadTimeout},
		{"timeouts.write", c.Timeouts.Write, &out.WriteTimeout},
		{"timeouts.upload", c.Timeouts.Upload, &out.UploadTimeout},
		{"reconnect.initial_delay", c.Reconnect.InitialDelay, &out.Reconnect.InitialDelay},
		{"reconnect.max_delay", c.Reconnect.MaxDelay, &out.Reconnect.MaxDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return roomchat.Config{}, fmt.Errorf("invalid %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}
	if c.Reconnect.Multiplier != 0 {
		out.Reconnect.Multiplier = c.Reconnect.Multiplier
	}
	if c.Reconnect.MaxAttempts != 0 {
		out.Reconnect.MaxAttempts = c.Reconnect.MaxAttempts
	}

	if err := out.Validate(); err != nil {
		return roomchat.Config{}, err
	}
	return out, nil
}
