package session

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/venuehub/pkg/auth"
)

// Session is one client's server-side record. Auth is the identity slot; it
// moves between anonymous, pending and authenticated as the user logs in.
type Session struct {
	ID             uuid.UUID  `json:"id"`
	Token          string     `json:"token"`
	Auth           auth.State `json:"auth"`
	Fingerprint    string     `json:"fingerprint,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewSession creates an anonymous session.
func NewSession(token, fingerprint string, now, expiresAt time.Time) *Session {
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		Auth:           auth.Anonymous(),
		Fingerprint:    fingerprint,
		ExpiresAt:      expiresAt,
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Auth.IsAuthenticated()
}

func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// ValidateFingerprint reports whether fingerprint matches the one recorded at
// creation. Sessions created without a fingerprint accept any.
func (s *Session) ValidateFingerprint(fingerprint string) bool {
	if s == nil || s.Fingerprint == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(s.Fingerprint), []byte(fingerprint)) == 1
}
