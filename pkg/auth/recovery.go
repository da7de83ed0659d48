package auth

import (
	"context"

	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

// ResetWithEmergencyCode lets an admin who lost their authenticator turn 2FA
// off without a session. Checks run in order: account exists, account is an
// admin, password matches, 2FA is enabled, emergency code matches. Success
// clears the secret, the flag and every emergency code; no session is created.
func (s *Service) ResetWithEmergencyCode(ctx context.Context, in EmergencyResetInput) error {
	acc, err := s.resetWithEmergencyCode(ctx, in)
	s.metrics.observe(opEmergencyReset, err)
	s.audit(ctx, AuditEmergencyReset, acc, err)
	return err
}

// resetWithEmergencyCode returns the account once it is known to be an admin.
func (s *Service) resetWithEmergencyCode(ctx context.Context, in EmergencyResetInput) (*Account, error) {
	if err := validator.Apply(
		validator.RequiredString("username", in.Username),
		validator.RequiredString("password", in.Password),
		validator.RequiredString("emergencyCode", in.EmergencyCode),
	); err != nil {
		return nil, err
	}

	acc, err := s.storage.GetAccountByUsername(ctx, in.Username)
	if err != nil {
		return nil, storageErr(err)
	}
	if !acc.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if !s.verifyPassword(acc, in.Password) {
		return acc, ErrInvalidPassword
	}
	if !acc.TwoFactorEnabled {
		return acc, ErrTwoFactorNotEnabled
	}
	if err := s.throttle(ctx, emergencyAttemptKey(acc)); err != nil {
		return acc, err
	}

	ok, err := s.consumeEmergencyCode(ctx, acc, in.EmergencyCode)
	if err != nil {
		return acc, err
	}
	if !ok {
		s.logger.WarnContext(ctx, "emergency code rejected",
			logger.UserID(acc.ID),
			logger.Component("auth"),
		)
		return acc, ErrInvalidEmergencyCode
	}

	s.logger.WarnContext(ctx, "2fa disabled with emergency code",
		logger.UserID(acc.ID),
		logger.Event("emergency_reset"),
		logger.Component("auth"),
	)
	return acc, nil
}
