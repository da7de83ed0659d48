package auth

import (
	"context"

	"github.com/google/uuid"
)

// AccountStorage persists accounts. Every two-factor mutation is a single
// conditional update on one record; when the condition no longer holds the
// implementation returns ErrStateChanged and leaves the record untouched.
// Lookups of missing records return ErrAccountNotFound.
type AccountStorage interface {
	CreateAccount(ctx context.Context, acc *Account) error // ErrUsernameTaken on duplicates
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
	// UpdateRole sets role to to if it is still from, dropping the emergency
	// codes. resetTwoFactor also clears secret and flag.
	UpdateRole(ctx context.Context, id uuid.UUID, from, to Role, resetTwoFactor bool) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	// BeginTwoFactor stores sealedSecret unless 2FA is enabled. When codeHashes
	// is non-nil it replaces the emergency code list.
	BeginTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string, codeHashes []string) error
	// EnableTwoFactor sets the flag if 2FA is not enabled and the stored secret equals sealedSecret.
	EnableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error
	// DisableTwoFactor clears secret and flag if 2FA is enabled with sealedSecret.
	DisableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error
	// ConsumeEmergencyCode clears the code list, secret and flag if 2FA is
	// enabled and codeHash is among the stored hashes.
	ConsumeEmergencyCode(ctx context.Context, id uuid.UUID, codeHash string) error
	// ResetTwoFactor unconditionally clears secret, flag and codes.
	ResetTwoFactor(ctx context.Context, id uuid.UUID) error
}
