package auth

import (
	"errors"

	"github.com/dmitrymomot/venuehub/pkg/validator"
)

// Kind classifies failures so transports can map them without inspecting messages.
type Kind uint8

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindPrecondition
	KindInvalidToken
	KindNotFound
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	case KindInvalidToken:
		return "invalid_token"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a comparable domain error. Values are compared with errors.Is.
type Error struct {
	Kind    Kind
	Key     string
	Message string
}

func (e Error) Error() string { return e.Message }

var (
	ErrInvalidCredentials = Error{KindAuthentication, "invalid_credentials", "invalid username or password"}
	ErrInvalidPassword    = Error{KindAuthentication, "invalid_password", "invalid password"}
	ErrUnauthenticated    = Error{KindAuthentication, "unauthenticated", "authentication required"}

	ErrForbidden   = Error{KindAuthorization, "forbidden", "insufficient permissions"}
	ErrAdminOnly   = Error{KindAuthorization, "admin_only", "only admins may use emergency codes"}
	ErrAdminTarget = Error{KindAuthorization, "admin_target", "admin 2FA can only be reset with an emergency code"}

	ErrNoPendingChallenge = Error{KindValidation, "no_pending_challenge", "username and password required"}
	ErrPasswordRequired   = Error{KindValidation, "password_required", "password must not be empty"}
	ErrInvalidRole        = Error{KindValidation, "invalid_role", "role must be user or admin"}

	ErrTwoFactorAlreadyEnabled = Error{KindConflict, "2fa_already_enabled", "2FA is already enabled, disable it first"}
	ErrUsernameTaken           = Error{KindConflict, "username_taken", "username already exists"}
	ErrAccountChanged          = Error{KindConflict, "account_changed", "account was changed concurrently, reload and retry"}

	ErrTwoFactorNotSetUp   = Error{KindPrecondition, "2fa_not_set_up", "2FA is not set up, run setup first"}
	ErrTwoFactorNotEnabled = Error{KindPrecondition, "2fa_not_enabled", "2FA is not enabled"}

	ErrInvalidTOTP          = Error{KindInvalidToken, "invalid_token", "invalid 2FA code"}
	ErrInvalidEmergencyCode = Error{KindInvalidToken, "invalid_emergency_code", "invalid emergency reset code"}

	ErrAccountNotFound = Error{KindNotFound, "account_not_found", "account not found"}

	ErrTooManyAttempts = Error{KindRateLimited, "too_many_attempts", "too many attempts, try again later"}
)

// Storage-level sentinels. Storage implementations return these; the service
// translates them into domain errors.
var (
	// ErrStateChanged means a conditional update found the record no longer matching its precondition.
	ErrStateChanged = errors.New("account state changed concurrently")
	ErrStorage      = errors.New("account storage failure")
)

// KindOf classifies err. Validation failures from pkg/validator count as KindValidation.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if validator.IsValidationError(err) {
		return KindValidation
	}
	return KindInternal
}
