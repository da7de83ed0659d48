package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/cookie"
)

// FingerprintFunc generates a device fingerprint from the request.
type FingerprintFunc func(r *http.Request) string

// Manager loads, creates and persists sessions.
type Manager struct {
	store           Store
	transport       Transport
	config          Config
	fingerprintFunc FingerprintFunc
	cookieManager   *cookie.Manager
	cookieOptions   []cookie.Option
	activityChan    chan activityUpdate
	done            chan struct{}
}

type activityUpdate struct {
	token     string
	at        time.Time
	expiresAt time.Time
}

// New creates a session manager. Without WithTransport a cookie manager is required.
func New(opts ...Option) *Manager {
	m := &Manager{
		config:       DefaultConfig(),
		activityChan: make(chan activityUpdate, 1000),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)
	}

	go m.activityWorker()

	return m
}

// Load returns the request's session.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := m.validate(session, r); err != nil {
		return nil, err
	}

	return session, nil
}

// Ensure returns the request's session or starts a new anonymous one.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Load(ctx, r)
	if err == nil {
		m.touch(session)
		return session, nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return nil, err
	}

	session, err = m.create(ctx, r)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.Timeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Save stores state as the session's identity slot. Any change of state
// issues a new token and invalidates the old one, so a token observed before
// login can never be used after it.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, session *Session, state auth.State) error {
	if session.Auth == state {
		return nil
	}

	token, err := generateToken()
	if err != nil {
		return err
	}

	now := time.Now()
	idle, max := m.config.Timeouts(state.IsAuthenticated())
	next := *session
	next.Token = token
	next.Auth = state
	next.LastActivityAt = now
	next.ExpiresAt = calculateExpiry(session.CreatedAt, now, idle, max)

	if err := m.store.Create(ctx, &next); err != nil {
		return err
	}
	_ = m.store.Delete(ctx, session.Token)

	if err := m.transport.SetToken(w, next.Token, idle); err != nil {
		return err
	}
	*session = next
	return nil
}

// Destroy deletes the session and clears the token on the client.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token, err := m.transport.GetToken(r); err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}
	return m.transport.ClearToken(w)
}

func (m *Manager) create(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	var fingerprint string
	if m.fingerprintFunc != nil {
		fingerprint = m.fingerprintFunc(r)
	}

	now := time.Now()
	idle, max := m.config.Timeouts(false)
	session := NewSession(token, fingerprint, now, calculateExpiry(now, now, idle, max))

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (m *Manager) validate(session *Session, r *http.Request) error {
	if session.IsExpired() {
		return ErrSessionExpired
	}
	if m.fingerprintFunc != nil && !session.ValidateFingerprint(m.fingerprintFunc(r)) {
		return ErrInvalidSession
	}
	return nil
}

// touch queues a sliding-expiry write once the activity threshold has passed.
func (m *Manager) touch(session *Session) {
	now := time.Now()
	if now.Sub(session.LastActivityAt) < m.config.ActivityUpdateThreshold {
		return
	}
	idle, max := m.config.Timeouts(session.IsAuthenticated())
	update := activityUpdate{
		token:     session.Token,
		at:        now,
		expiresAt: calculateExpiry(session.CreatedAt, now, idle, max),
	}
	select {
	case m.activityChan <- update:
	default:
		// Channel full; the next request retries.
	}
}

func (m *Manager) activityWorker() {
	apply := func(u activityUpdate) {
		_ = m.store.UpdateActivity(context.Background(), u.token, u.at, u.expiresAt)
	}
	for {
		select {
		case u := <-m.activityChan:
			apply(u)
		case <-m.done:
			for {
				select {
				case u := <-m.activityChan:
					apply(u)
				default:
					return
				}
			}
		}
	}
}

// Close stops the activity worker after draining queued updates.
func (m *Manager) Close() error {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	return nil
}

// calculateExpiry returns the earlier of the idle deadline and the absolute lifetime.
func calculateExpiry(createdAt, now time.Time, idle, max time.Duration) time.Time {
	idleExpiry := now.Add(idle)
	maxExpiry := createdAt.Add(max)
	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
