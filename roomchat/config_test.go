package roomchat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.ServerURL = "" }},
		{"http scheme", func(c *Config) { c.ServerURL = "http://localhost:10000" }},
		{"no host", func(c *Config) { c.ServerURL = "ws://" }},
		{"unknown locale", func(c *Config) { c.Locale = "fr" }},
		{"zero attempts", func(c *Config) { c.Reconnect.MaxAttempts = 0 }},
		{"zero initial delay", func(c *Config) { c.Reconnect.InitialDelay = 0 }},
		{"max below initial", func(c *Config) { c.Reconnect.MaxDelay = time.Second }},
		{"shrinking multiplier", func(c *Config) { c.Reconnect.Multiplier = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, ErrorInvalidConfig, codeOf(err))
		})
	}
}

func TestReconnectDelay(t *testing.T) {
	p := DefaultConfig().Reconnect
	want := []time.Duration{3 * time.Second, 6 * time.Second, 12 * time.Second, 24 * time.Second, 30 * time.Second, 30 * time.Second}
	for i, w := range want {
		assert.Equal(t, w, p.Delay(i), "attempt %d", i)
	}
	assert.Equal(t, 30*time.Second, p.Delay(5000))
}

func TestEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServerURL = "wss://chat.example.com/ignored/path"

	got, err := cfg.Endpoint("ana maria", "sala 1")
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/ws/ana%20maria/sala%201", got)

	cfg.RoomlessPath = true
	got, err = cfg.Endpoint("ana", "public")
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/ws/ana", got)
}

func TestHTTPOrigin(t *testing.T) {
	cfg := DefaultConfig()
	origin, err := cfg.HTTPOrigin()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:10000", origin)

	cfg.ServerURL = "wss://chat.example.com"
	origin, err = cfg.HTTPOrigin()
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", origin)
}

func TestNewNotice(t *testing.T) {
	n := NewNotice("en", NoticeWelcome, "public", "alice")
	assert.Equal(t, "Welcome to room public, alice!", n.Text)
	assert.False(t, n.IsError)

	n = NewNotice("pt", NoticeNotConnected)
	assert.Equal(t, "Sem conexão. Mensagem não enviada.", n.Text)
	assert.True(t, n.IsError)

	n = NewNotice("xx", NoticeReconnectGaveUp, 8)
	assert.Equal(t, "Could not reconnect after 8 attempts.", n.Text)
}
