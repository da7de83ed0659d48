package session

import (
	"github.com/dmitrymomot/venuehub/pkg/cookie"
)

type Option func(*Manager)

func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport replaces the default cookie transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithFingerprint binds sessions to a device fingerprint computed at creation.
func WithFingerprint(fn FingerprintFunc) Option {
	return func(m *Manager) {
		m.fingerprintFunc = fn
	}
}

// WithCookieManager sets the cookie manager for the default cookie transport.
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
		m.cookieOptions = opts
	}
}
