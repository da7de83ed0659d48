package session

import (
	"context"
	"time"
)

// Store persists sessions keyed by token. Records expire at ExpiresAt.
type Store interface {
	Create(ctx context.Context, session *Session) error
	// Get returns ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)
	// Update replaces an existing record and fails with ErrSessionNotFound when it is gone.
	Update(ctx context.Context, session *Session) error
	// UpdateActivity slides the expiry without touching the identity slot.
	UpdateActivity(ctx context.Context, token string, lastActivity, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}
