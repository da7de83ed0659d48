package session

import (
	"net/http"
	"time"
)

// Transport moves the session token between client and server. The cookie
// transport serves browsers, the header transport serves scanner devices and
// CompositeTransport accepts either.
type Transport interface {
	// GetToken returns ErrSessionNotFound when the request carries no usable token.
	GetToken(r *http.Request) (string, error)
	// SetToken is called on every issue and rotation; ttl is the idle timeout.
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error
	ClearToken(w http.ResponseWriter) error
}
