package roomchat

import "go.uber.org/zap"

// SetLogger overrides logger (optional). Call it before Connect.
func (c *Client) SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	c.logger = l.Named("roomchat")
}

func sessionFields(s *Session) []zap.Field {
	return []zap.Field{
		zap.String("session", s.ID),
		zap.String("user", s.DisplayName),
		zap.String("room", s.RoomID),
	}
}
