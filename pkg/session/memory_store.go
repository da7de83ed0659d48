package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Expired entries are evicted
// by go-cache's janitor.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a store. A cleanupInterval of zero disables the janitor;
// expired entries are then only skipped on read.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (m *MemoryStore) Create(_ context.Context, session *Session) error {
	ttl, err := storeTTL(session)
	if err != nil {
		return err
	}
	if err := m.c.Add(session.Token, *session, ttl); err != nil {
		return ErrInvalidSession
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	v, ok := m.c.Get(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(Session)
	if s.IsExpired() {
		m.c.Delete(token)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Update(_ context.Context, session *Session) error {
	ttl, err := storeTTL(session)
	if err != nil {
		return err
	}
	if err := m.c.Replace(session.Token, *session, ttl); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

func (m *MemoryStore) UpdateActivity(ctx context.Context, token string, lastActivity, expiresAt time.Time) error {
	s, err := m.Get(ctx, token)
	if err != nil {
		return err
	}
	s.LastActivityAt = lastActivity
	s.ExpiresAt = expiresAt
	return m.Update(ctx, s)
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.c.Delete(token)
	return nil
}

func storeTTL(session *Session) (time.Duration, error) {
	if session == nil || session.Token == "" {
		return 0, ErrInvalidSession
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return 0, ErrSessionExpired
	}
	return ttl, nil
}
