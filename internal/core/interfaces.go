package core

import "errors"

// ErrSessionsClosed is returned once the registry has been shut down.
var ErrSessionsClosed = errors.New("session registry is shut down")

// SessionService keeps one live Session per signed-in user.
type SessionService interface {
	// Session returns the session for uid, creating it on first use.
	Session(uid string) (*Session, error)
	// Len returns the number of open sessions.
	Len() int
	// Shutdown closes every session and stops idle eviction.
	Shutdown()
}
