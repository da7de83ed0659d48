package session

import (
	"net/http"
	"strings"
	"time"
)

// HeaderTransport carries the token in a header for clients without a cookie
// jar, such as the door scanners. The token is written back in the same
// header whenever it is issued or rotated and clients must keep the latest.
type HeaderTransport struct {
	name   string
	scheme string
}

type HeaderOption func(*HeaderTransport)

// WithScheme sets the auth scheme expected before the token ("Bearer" by default).
// An empty scheme means the header holds the bare token.
func WithScheme(scheme string) HeaderOption {
	return func(t *HeaderTransport) { t.scheme = scheme }
}

func NewHeaderTransport(name string, opts ...HeaderOption) *HeaderTransport {
	t := &HeaderTransport{name: name, scheme: "Bearer"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetToken requires the configured scheme, matched case-insensitively.
// A missing scheme or an empty token reads as no session.
func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get(t.name))
	if t.scheme != "" {
		scheme, token, ok := strings.Cut(value, " ")
		if !ok || !strings.EqualFold(scheme, t.scheme) {
			return "", ErrSessionNotFound
		}
		value = strings.TrimSpace(token)
	}
	if value == "" || strings.ContainsAny(value, " \t") {
		return "", ErrSessionNotFound
	}
	return value, nil
}

// SetToken also sets "<name>-Expires" in RFC 3339 when ttl is positive.
func (t *HeaderTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	value := token
	if t.scheme != "" {
		value = t.scheme + " " + token
	}
	w.Header().Set(t.name, value)
	if ttl > 0 {
		w.Header().Set(t.name+"-Expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	}
	return nil
}

// ClearToken answers with an empty header so clients drop their copy.
func (t *HeaderTransport) ClearToken(w http.ResponseWriter) error {
	w.Header().Set(t.name, "")
	w.Header().Del(t.name + "-Expires")
	return nil
}
