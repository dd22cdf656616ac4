package ldap

import (
	"context"
	"sync"
)

// Session is a bound connection to one endpoint of the server list.
// Sessions are only created by Directory.ConnectAndBind.
type Session struct {
	conn   Conn
	server string

	mu    sync.Mutex
	bound bool
}

func newSession(conn Conn, server string) *Session {
	return &Session{
		conn:   conn,
		server: server,
		bound:  true,
	}
}

// Server returns the endpoint the session is bound to.
func (s *Session) Server() string {
	return s.server
}

// IsBound reports whether the session can still be used.
func (s *Session) IsBound() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Unbind sends an unbind request and releases the transport. Calling it
// more than once is a no-op.
func (s *Session) Unbind() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bound {
		return nil
	}
	s.bound = false

	if err := s.conn.Unbind(); err != nil {
		// The unbind request could not be sent; drop the transport anyway.
		_ = s.conn.Close()
		return NewLDAPError("unbind", s.server, err)
	}

	return nil
}

// UnbindContext is Unbind with connection event logging.
func (s *Session) UnbindContext(ctx context.Context) error {
	if !s.IsBound() {
		return nil
	}

	err := s.Unbind()
	fields := map[string]any{"server": s.server}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogConnectionEvent(ctx, "unbind", fields)
	return err
}
