package roomchat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/roomchat-go/roomchat/internal"
	"github.com/vovakirdan/roomchat-go/roomchat/upload"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session is the live login: who we are and where we are connected.
type Session struct {
	ID          string
	DisplayName string
	RoomID      string
	Endpoint    string
}

// Client is a room chat client. It owns at most one Session and one
// connection at a time.
type Client struct {
	cfg        Config
	origin     string
	logger     *zap.Logger
	dispatcher Dispatcher
	writeCh    chan string

	// Files uploads images for SendImage. Exposed so callers can swap the
	// HTTP client.
	Files *upload.Client

	mu      sync.Mutex
	state   ConnectionState
	session *Session
	conn    *internal.Conn
	roster  Roster
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewClient constructs a client with provided config.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	origin, err := cfg.HTTPOrigin()
	if err != nil {
		return nil, err
	}
	files := upload.NewClient(origin)
	if cfg.UploadTimeout > 0 {
		files.SetHTTPClient(&http.Client{Timeout: cfg.UploadTimeout})
	}
	return &Client{
		cfg:     cfg,
		origin:  origin,
		logger:  zap.NewNop(),
		writeCh: make(chan string, 16),
		Files:   files,
	}, nil
}

// OnChat registers callback for plain chat lines.
func (c *Client) OnChat(fn func(Frame)) { c.dispatcher.SetOnChat(fn) }

// OnPrivate registers callback for private messages.
func (c *Client) OnPrivate(fn func(Frame)) { c.dispatcher.SetOnPrivate(fn) }

// OnSystem registers callback for server system notices.
func (c *Client) OnSystem(fn func(Frame)) { c.dispatcher.SetOnSystem(fn) }

// OnImage registers callback for image references.
func (c *Client) OnImage(fn func(Frame)) { c.dispatcher.SetOnImage(fn) }

// OnRoster registers callback for roster snapshots.
func (c *Client) OnRoster(fn func(Roster)) { c.dispatcher.SetOnRoster(fn) }

// OnNotice registers callback for notices the client produces itself.
func (c *Client) OnNotice(fn func(Notice)) { c.dispatcher.SetOnNotice(fn) }

// OnStateChanged registers callback for connection state transitions.
func (c *Client) OnStateChanged(fn func(StateEvent)) { c.dispatcher.SetOnStateChanged(fn) }

// OnError registers callback for asynchronous errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// Connect starts a session and makes the first connection attempt.
//
// An empty display name is a validation error and nothing is dialed. A
// failed first attempt returns a transport error, but the session stays
// live and keeps retrying under the reconnect policy until Logout.
func (c *Client) Connect(ctx context.Context, displayName, roomID string) error {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return NewError(ErrorValidation, "display name is empty")
	}
	room := strings.TrimSpace(roomID)
	if room == "" {
		room = DefaultRoom
	}
	endpoint, err := c.cfg.Endpoint(name, room)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return NewError(ErrorAlreadyConnected, "a session is already live")
	}
	sess := &Session{ID: uuid.NewString(), DisplayName: name, RoomID: room, Endpoint: endpoint}
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.session, c.cancel, c.done = sess, cancel, done
	c.roster = Roster{}
	old := c.state
	c.state = StateConnecting
	c.mu.Unlock()

	c.logger.Info("session started", sessionFields(sess)...)
	if old != StateConnecting {
		c.dispatcher.fireState(StateEvent{OldState: old, NewState: StateConnecting})
	}

	first := make(chan error, 1)
	go c.supervise(runCtx, sess, done, first)

	select {
	case err := <-first:
		return err
	case <-ctx.Done():
		return WrapError(ErrorTimeout, "waiting for first connection attempt", ctx.Err())
	}
}

// SendChat broadcasts text to the room.
func (c *Client) SendChat(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewError(ErrorValidation, "message is empty")
	}
	return c.send(ctx, text)
}

// SendPrivate sends text to a single recipient picked from the roster.
func (c *Client) SendPrivate(ctx context.Context, recipient, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewError(ErrorValidation, "message is empty")
	}
	if len(c.OnlineUsers()) == 0 {
		return NewError(ErrorValidation, "no online users available")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return NewError(ErrorValidation, "no recipient")
	}
	return c.send(ctx, FormatPrivate(recipient, text))
}

// SendImage uploads r and, once the server stores it, announces the
// reference to the room. Upload failures are reported and not retried.
func (c *Client) SendImage(ctx context.Context, filename string, r io.Reader) error {
	sess, ok := c.Session()
	if !ok || c.State() != StateConnected {
		c.dispatcher.fireNotice(c.notice(NoticeNotConnected))
		return NewError(ErrorNotConnected, "connection is not open")
	}

	resp, err := c.Files.Upload(ctx, sess.DisplayName, sess.RoomID, filename, r)
	if err != nil {
		c.logger.Warn("image upload failed", append(sessionFields(&sess), zap.String("file", filename), zap.Error(err))...)
		c.dispatcher.fireNotice(c.notice(NoticeUploadFailed, err.Error()))
		return WrapError(ErrorUpload, "upload image", err)
	}
	c.logger.Debug("image uploaded", append(sessionFields(&sess), zap.String("url", resp.URL))...)
	return c.send(ctx, FormatImage(resp.URL))
}

// Receive classifies one inbound line and dispatches it. The read loop
// calls it for every frame.
func (c *Client) Receive(raw string) {
	f := ParseFrame(raw)

	c.mu.Lock()
	self := ""
	if c.session != nil {
		self = c.session.DisplayName
	}
	switch f.Kind {
	case KindRoster:
		c.roster = NewRoster(f.Users)
	case KindImage:
		f.URL = resolveURL(c.origin, f.URL)
		f.Own = self != "" && f.Sender == self
	case KindChat:
		f.Own = self != "" && strings.Contains(raw, self)
	}
	roster := c.roster
	c.mu.Unlock()

	c.dispatcher.Dispatch(f, roster)
}

// Logout closes the connection with a normal closure, cancels any pending
// reconnect and ends the session. Calling it without a session is a no-op.
//
// Logout waits for the session goroutines to exit. Callbacks run on those
// goroutines, so calling Logout from inside a callback deadlocks; hand it
// off to another goroutine instead.
func (c *Client) Logout() error {
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		return nil
	}
	conn, cancel, done := c.conn, c.cancel, c.done
	c.session, c.conn, c.cancel = nil, nil, nil
	c.roster = Roster{}
	old := c.state
	c.state = StateLoggedOut
	c.mu.Unlock()

	var closeErr error
	if conn != nil {
		closeErr = conn.Close(websocket.StatusNormalClosure, "User logout")
	}
	cancel()
	<-done

	if old != StateLoggedOut {
		c.dispatcher.fireState(StateEvent{OldState: old, NewState: StateLoggedOut})
	}
	c.logger.Info("logged out", sessionFields(sess)...)
	if closeErr != nil && websocket.CloseStatus(closeErr) == -1 {
		c.logger.Debug("close handshake", zap.Error(closeErr))
	}
	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the live session, if any.
func (c *Client) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Roster returns the latest roster snapshot.
func (c *Client) Roster() Roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster
}

// OnlineUsers returns the roster without the local user.
func (c *Client) OnlineUsers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	self := ""
	if c.session != nil {
		self = c.session.DisplayName
	}
	return c.roster.Others(self)
}

func (c *Client) send(ctx context.Context, frame string) error {
	if c.State() != StateConnected {
		c.dispatcher.fireNotice(c.notice(NoticeNotConnected))
		return NewError(ErrorNotConnected, "connection is not open")
	}

	select {
	case c.writeCh <- frame:
		return nil
	case <-ctx.Done():
		return WrapError(ErrorTimeout, "queue frame", ctx.Err())
	}
}

// supervise owns every connection attempt of a session, so attempts never
// overlap. It exits when the session ends or its context is cancelled.
func (c *Client) supervise(ctx context.Context, sess *Session, done chan<- struct{}, first chan<- error) {
	defer close(done)
	log := c.logger.With(sessionFields(sess)...)

	report := func(err error) {
		if first != nil {
			first <- err
			first = nil
		}
	}
	defer report(NewError(ErrorNotConnected, "session ended before connecting"))

	failures := 0
	conn, err := c.dial(ctx, sess)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		failures = 1
		log.Warn("connect failed", zap.Error(err))
		c.dispatcher.fireNotice(c.notice(NoticeConnectError))
		report(WrapError(ErrorTransport, "connect", err))
	}

	for {
		if conn == nil {
			var ok bool
			conn, failures, ok = c.redial(ctx, sess, failures, log)
			if !ok {
				return
			}
		}
		if !c.attach(sess, conn) {
			return
		}
		report(nil)
		log.Info("connected")

		clean, err := c.serve(ctx, conn)
		c.detach(conn)
		if ctx.Err() != nil || !c.owns(sess) {
			return
		}
		if clean {
			log.Info("server closed the connection", zap.Int("status", int(websocket.CloseStatus(err))))
			c.dispatcher.fireNotice(c.notice(NoticeClosed))
			c.endSession(sess, nil)
			return
		}

		log.Warn("connection lost", zap.Error(err))
		c.dispatcher.fireNotice(c.notice(NoticeConnectionLost))
		c.dispatcher.fireError(WrapError(ErrorTransport, "connection lost", err))
		if !c.setSessionState(sess, StateConnecting, err) {
			return
		}
		conn, failures = nil, 0
	}
}

// redial waits out the backoff and dials until it succeeds, the policy
// gives up, or ctx is cancelled. failures counts dials that already failed
// since the last connection; the backoff restarts at Delay(0) on every call.
func (c *Client) redial(ctx context.Context, sess *Session, failures int, log *zap.Logger) (*internal.Conn, int, bool) {
	p := c.cfg.Reconnect
	for retry := 0; ; retry++ {
		if failures >= p.MaxAttempts {
			err := NewError(ErrorReconnectExhausted, fmt.Sprintf("gave up after %d attempts", failures))
			log.Error("reconnect gave up", zap.Int("attempts", failures))
			c.dispatcher.fireNotice(c.notice(NoticeReconnectGaveUp, failures))
			c.dispatcher.fireError(err)
			c.endSession(sess, err)
			return nil, failures, false
		}

		delay := p.Delay(retry)
		log.Debug("reconnect scheduled", zap.Int("attempt", failures+1), zap.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, failures, false
		case <-timer.C:
		}

		conn, err := c.dial(ctx, sess)
		if err == nil {
			return conn, 0, true
		}
		if ctx.Err() != nil {
			return nil, failures, false
		}
		failures++
		log.Warn("reconnect failed", zap.Int("attempt", failures), zap.Error(err))
		c.dispatcher.fireNotice(c.notice(NoticeConnectError))
	}
}

func (c *Client) dial(ctx context.Context, sess *Session) (*internal.Conn, error) {
	return internal.Dial(ctx, sess.Endpoint, c.cfg.HandshakeTimeout, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
}

// attach publishes conn as the live connection. It refuses, and closes
// conn, when the session was logged out while dialing.
func (c *Client) attach(sess *Session, conn *internal.Conn) bool {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "User logout")
		return false
	}
	c.conn = conn
	old := c.state
	c.state = StateConnected
	c.mu.Unlock()

	c.drain()
	if old != StateConnected {
		c.dispatcher.fireState(StateEvent{OldState: old, NewState: StateConnected})
	}
	c.dispatcher.fireNotice(c.notice(NoticeWelcome, sess.RoomID, sess.DisplayName))
	return true
}

func (c *Client) detach(conn *internal.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	c.drain()
}

// drain drops frames queued for a connection that no longer exists.
func (c *Client) drain() {
	for {
		select {
		case <-c.writeCh:
		default:
			return
		}
	}
}

func (c *Client) owns(sess *Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == sess
}

// endSession is the supervisor's way out: clean close or exhausted retries.
func (c *Client) endSession(sess *Session, cause error) {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.session, c.conn, c.cancel = nil, nil, nil
	c.roster = Roster{}
	old := c.state
	c.state = StateLoggedOut
	c.mu.Unlock()

	cancel()
	if old != StateLoggedOut {
		c.dispatcher.fireState(StateEvent{OldState: old, NewState: StateLoggedOut, Error: cause})
	}
}

// serve runs the read and write loops for one connection and reports
// whether it ended with a closing handshake.
func (c *Client) serve(ctx context.Context, conn *internal.Conn) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(gctx, conn) })
	g.Go(func() error { return c.writeLoop(gctx, conn) })
	err := g.Wait()
	_ = conn.CloseNow()
	return websocket.CloseStatus(err) != -1, err
}

func (c *Client) readLoop(ctx context.Context, conn *internal.Conn) error {
	for {
		line, err := conn.ReadText(ctx)
		if err != nil {
			return err
		}
		c.Receive(line)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn) error {
	for {
		select {
		case text := <-c.writeCh:
			if err := conn.WriteText(ctx, text); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("write failed", zap.Error(err))
				c.dispatcher.fireNotice(c.notice(NoticeSendFailed))
				_ = conn.CloseNow()
				return WrapError(ErrorTransport, "write", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// setSessionState changes state only while sess is still the live session.
func (c *Client) setSessionState(sess *Session, s ConnectionState, cause error) bool {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return false
	}
	old := c.state
	c.state = s
	c.mu.Unlock()
	if old != s {
		c.dispatcher.fireState(StateEvent{OldState: old, NewState: s, Error: cause})
	}
	return true
}

func (c *Client) notice(id NoticeID, args ...any) Notice {
	return NewNotice(c.cfg.locale(), id, args...)
}
