package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role determines access to admin operations and eligibility for emergency codes.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []string{string(RoleUser), string(RoleAdmin)}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// TwoFactorStatus is the per-account enrollment state derived from stored fields.
type TwoFactorStatus string

const (
	TwoFactorDisabled     TwoFactorStatus = "disabled"
	TwoFactorProvisioning TwoFactorStatus = "provisioning"
	TwoFactorEnabled      TwoFactorStatus = "enabled"
)

// Account is a registered identity.
// TwoFactorSecret holds the sealed (encrypted) TOTP secret, never the plaintext.
type Account struct {
	ID               uuid.UUID
	Username         string
	PasswordHash     []byte
	Role             Role
	TwoFactorSecret  string
	TwoFactorEnabled bool
	EmergencyCodes   []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) TwoFactorStatus() TwoFactorStatus {
	switch {
	case a.TwoFactorEnabled:
		return TwoFactorEnabled
	case a.TwoFactorSecret != "":
		return TwoFactorProvisioning
	default:
		return TwoFactorDisabled
	}
}

// Identity is the authenticated principal carried by a session.
type Identity struct {
	AccountID uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	LoginAt   time.Time `json:"loginAt"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// LoginInput carries the fields of a login attempt. Code is optional.
type LoginInput struct {
	Username string
	Password string
	Code     string
}

// LoginResult reports how a login attempt ended when it did not fail.
type LoginResult struct {
	Identity    *Identity
	Requires2FA bool
}

// SetupResult is returned once by StartSetup. Nothing in it is persisted in plaintext.
type SetupResult struct {
	Secret        string
	OTPAuthURL    string
	QRCode        string
	EmergencyCode string // admins only
}

// DisableInput carries the two factors required to turn 2FA off.
type DisableInput struct {
	Password string
	Code     string
}

// EmergencyResetInput is the unauthenticated recovery request.
type EmergencyResetInput struct {
	Username      string
	Password      string
	EmergencyCode string
}

// CreateAccountInput is used by admins and seeding.
type CreateAccountInput struct {
	Username string
	Password string
	Role     Role
}

// UpdateAccountInput changes password and/or role; the username is immutable.
type UpdateAccountInput struct {
	Password *string
	Role     *Role
}
