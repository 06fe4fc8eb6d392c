package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/vovakirdan/roomchat-go/internal/chattest"
	"github.com/vovakirdan/roomchat-go/internal/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// verifyNoLeaks runs after every other cleanup of the test.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	opts := []goleak.Option{
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	}
	t.Cleanup(func() { goleak.VerifyNone(t, opts...) })
}

func TestRunLine(t *testing.T) {
	verifyNoLeaks(t)
	logger = zap.NewNop()
	srv := chattest.NewServer()
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Server = srv.URL()
	client, err := newClient(cfg, logger)
	require.NoError(t, err)

	in, feed := io.Pipe()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runLine(context.Background(), client, "alice", "", in, out) }()

	send := func(line string) {
		_, err := io.WriteString(feed, line+"\n")
		require.NoError(t, err)
	}
	waitOutput := func(want string) {
		t.Helper()
		require.Eventually(t, func() bool { return strings.Contains(out.String(), want) }, 3*time.Second, 10*time.Millisecond,
			"output %q missing %q", out.String(), want)
	}

	send("hello")
	waitOutput("* Welcome to room public, alice!")
	waitOutput("alice: hello")

	send("/who")
	waitOutput("Online Users (1): alice (you)")

	send("/msg bob psst")
	waitOutput("! no online users available")

	send("/img /definitely/missing.png")
	waitOutput("! open /definitely/missing.png")

	send("/quit")
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runLine did not return after /quit")
	}
	_ = feed.Close()

	require.Eventually(t, func() bool {
		code, ok := srv.CloseStatus("alice")
		return ok && code == websocket.StatusNormalClosure
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []chattest.Inbound{{User: "alice", Room: "public", Text: "hello"}}, srv.Received())
}

func TestRunLineStopsReaderOnCancel(t *testing.T) {
	verifyNoLeaks(t)
	logger = zap.NewNop()
	srv := chattest.NewServer()
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Server = srv.URL()
	client, err := newClient(cfg, logger)
	require.NoError(t, err)

	in, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })
	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runLine(ctx, client, "alice", "", in, out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "* Welcome to room public, alice!")
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runLine did not return after cancel")
	}

	// A line arriving after shutdown must not strand the reader.
	_, err = io.WriteString(feed, "too late\n")
	require.NoError(t, err)
	assert.Empty(t, srv.Received())
}

func TestRunLineRejectsBlankName(t *testing.T) {
	logger = zap.NewNop()
	srv := chattest.NewServer()
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Server = srv.URL()
	client, err := newClient(cfg, logger)
	require.NoError(t, err)

	err = runLine(context.Background(), client, "  ", "", strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Zero(t, srv.Dials())
}

func TestLoadSettingsFlagPrecedence(t *testing.T) {
	t.Setenv("ROOMCHAT_SERVER", "ws://from-env:1")
	t.Setenv("ROOMCHAT_NAME", "env-name")
	t.Setenv("ROOMCHAT_ROOM", "")
	t.Setenv("ROOMCHAT_LOCALE", "")
	t.Setenv("ROOMCHAT_LOG_FILE", "")
	configPath = t.TempDir() + "/missing.yaml"

	flags := rootCmd.PersistentFlags()
	require.NoError(t, flags.Set("server", "ws://from-flag:2"))
	t.Cleanup(func() {
		serverURL = ""
		flags.Lookup("server").Changed = false
	})

	cfg, err := loadSettings(flags)
	require.NoError(t, err)
	assert.Equal(t, "ws://from-flag:2", cfg.Server)
	assert.Equal(t, "env-name", cfg.Name)
	assert.Equal(t, "public", cfg.Room)
}

func TestNewLoggerWithoutFileIsNop(t *testing.T) {
	l, err := newLogger(config.LoggingConfig{}, true)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := t.TempDir() + "/logs/roomchat.log"
	l, err := newLogger(config.LoggingConfig{Level: "warn", File: path}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l, err = newLogger(config.LoggingConfig{Level: "warn", File: path}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LoggingConfig{Level: "loud", File: path}, false)
	assert.Error(t, err)
}
