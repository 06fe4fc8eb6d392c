package roomchat

// ConnectionState represents where the client is in the session lifecycle.
type ConnectionState int

const (
	// StateLoggedOut means there is no live session.
	StateLoggedOut ConnectionState = iota

	// StateConnecting means a session exists and the client is dialing,
	// either for the first time or after an unclean close.
	StateConnecting

	// StateConnected means the connection is open and frames can be sent.
	StateConnected
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// StateEvent represents a state change event.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // Optional error that caused the state change
}
