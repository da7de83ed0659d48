package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/venuehub/pkg/cookie"
)

// CookieTransport carries the token in an encrypted, HttpOnly cookie.
type CookieTransport struct {
	cookieMgr  *cookie.Manager
	cookieName string
	secure     bool
	options    []cookie.Option
}

func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, secure bool, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookieMgr:  cookieMgr,
		cookieName: cookieName,
		secure:     secure,
		options:    opts,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookieMgr.GetEncrypted(r, t.cookieName)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}
	return t.cookieMgr.SetEncrypted(w, t.cookieName, token, append(opts, t.options...)...)
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.cookieName)
	return nil
}
