package roomchat

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// DefaultRoom is used when Connect is called with an empty room.
const DefaultRoom = "public"

// Config controls how the client connects.
type Config struct {
	// ServerURL is the WebSocket base, e.g. "wss://chat.example.com" or
	// "ws://localhost:10000". Any path is ignored.
	ServerURL string

	// RoomlessPath dials /ws/<name> instead of /ws/<name>/<room>, for
	// single-room servers.
	RoomlessPath bool

	// Locale selects the notice catalog ("en" or "pt").
	Locale string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // 0 disables it; chat rooms can idle for long
	WriteTimeout     time.Duration
	UploadTimeout    time.Duration

	Reconnect ReconnectPolicy
}

// ReconnectPolicy bounds automatic reconnection after a failed dial or an
// unclean close.
type ReconnectPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// MaxAttempts is the number of consecutive failed dials after which the
	// session is abandoned. Must be positive.
	MaxAttempts int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ServerURL:        "ws://localhost:10000",
		Locale:           "en",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		UploadTimeout:    30 * time.Second,
		Reconnect: ReconnectPolicy{
			InitialDelay: 3 * time.Second,
			Multiplier:   2,
			MaxDelay:     30 * time.Second,
			MaxAttempts:  8,
		},
	}
}

// Validate checks the config before a client uses it.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return NewError(ErrorInvalidConfig, "empty server URL")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return WrapError(ErrorInvalidConfig, "parse server URL", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return NewError(ErrorInvalidConfig, fmt.Sprintf("server URL scheme must be ws or wss, got %q", u.Scheme))
	}
	if u.Host == "" {
		return NewError(ErrorInvalidConfig, "server URL has no host")
	}
	if _, ok := catalogs[c.locale()]; !ok {
		return NewError(ErrorInvalidConfig, fmt.Sprintf("unsupported locale %q", c.Locale))
	}
	p := c.Reconnect
	if p.MaxAttempts <= 0 {
		return NewError(ErrorInvalidConfig, "reconnect max attempts must be positive")
	}
	if p.InitialDelay <= 0 || p.MaxDelay < p.InitialDelay {
		return NewError(ErrorInvalidConfig, "reconnect delays must satisfy 0 < initial <= max")
	}
	if p.Multiplier < 1 {
		return NewError(ErrorInvalidConfig, "reconnect multiplier must be >= 1")
	}
	return nil
}

// Delay returns the wait before reconnect attempt n (0-based).
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if d > float64(p.MaxDelay) || math.IsInf(d, 1) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Endpoint builds the WebSocket URL for a session.
func (c Config) Endpoint(displayName, roomID string) (string, error) {
	base, err := c.base()
	if err != nil {
		return "", err
	}
	path := "/ws/" + url.PathEscape(displayName)
	if !c.RoomlessPath {
		path += "/" + url.PathEscape(roomID)
	}
	return base + path, nil
}

// HTTPOrigin maps the WebSocket base onto its HTTP origin (ws → http,
// wss → https). Image paths and the upload endpoint hang off it.
func (c Config) HTTPOrigin() (string, error) {
	base, err := c.base()
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(base, "wss://"):
		return "https://" + strings.TrimPrefix(base, "wss://"), nil
	case strings.HasPrefix(base, "ws://"):
		return "http://" + strings.TrimPrefix(base, "ws://"), nil
	default:
		return base, nil
	}
}

func (c Config) base() (string, error) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", WrapError(ErrorInvalidConfig, "parse server URL", err)
	}
	if u.Host == "" {
		return "", NewError(ErrorInvalidConfig, "server URL has no host")
	}
	return u.Scheme + "://" + u.Host, nil
}

func (c Config) locale() string {
	if c.Locale == "" {
		return "en"
	}
	return strings.ToLower(c.Locale)
}
