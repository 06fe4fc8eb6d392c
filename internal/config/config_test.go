package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomchat-go/roomchat"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"ROOMCHAT_SERVER", "ROOMCHAT_NAME", "ROOMCHAT_ROOM", "ROOMCHAT_LOCALE", "ROOMCHAT_LOG_FILE"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server: wss://chat.example.com
name: alice
room: lobby
locale: pt
reconnect:
  max_attempts: 3
logging:
  level: debug
  file: /tmp/roomchat.log
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com", cfg.Server)
	assert.Equal(t, "alice", cfg.Name)
	assert.Equal(t, "lobby", cfg.Room)
	assert.Equal(t, "pt", cfg.Locale)
	assert.Equal(t, 3, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, "3s", cfg.Reconnect.InitialDelay, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROOMCHAT_SERVER", "ws://10.0.0.1:9000")
	t.Setenv("ROOMCHAT_NAME", "bob")
	t.Setenv("ROOMCHAT_ROOM", "ops")
	t.Setenv("ROOMCHAT_LOCALE", "pt")
	t.Setenv("ROOMCHAT_LOG_FILE", "/var/log/roomchat.log")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ws://ignored\nname: alice\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://10.0.0.1:9000", cfg.Server)
	assert.Equal(t, "bob", cfg.Name)
	assert.Equal(t, "ops", cfg.Room)
	assert.Equal(t, "pt", cfg.Locale)
	assert.Equal(t, "/var/log/roomchat.log", cfg.Logging.File)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Name = "carol"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server = "wss://chat.example.com"
	cfg.RoomlessPath = true
	cfg.Timeouts.Read = "90s"
	cfg.Reconnect.MaxAttempts = 5

	got, err := cfg.ClientConfig()
	require.NoError(t, err)

	want := roomchat.DefaultConfig()
	want.ServerURL = "wss://chat.example.com"
	want.RoomlessPath = true
	want.ReadTimeout = 90 * time.Second
	want.Reconnect.MaxAttempts = 5
	assert.Equal(t, want, got)
}

func TestClientConfigErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeouts.Write = "soon"
	_, err := cfg.ClientConfig()
	assert.ErrorContains(t, err, "timeouts.write")

	cfg = DefaultConfig()
	cfg.Server = "http://chat.example.com"
	_, err = cfg.ClientConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, &roomchat.ChatError{Code: roomchat.ErrorInvalidConfig})
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, filepath.Join("/cfg", "roomchat", "config.yaml"), DefaultPath())
}
