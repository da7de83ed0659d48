package auth

import (
	"context"

	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

func (s *Service) identityAccount(ctx context.Context, state State) (*Account, error) {
	id, err := s.CurrentIdentity(state)
	if err != nil {
		return nil, err
	}
	return s.account(ctx, id.AccountID)
}

// StartSetup provisions a new TOTP secret for the signed-in account.
// Calling it again before confirming discards the previous secret and, for
// admins, the previous emergency code.
func (s *Service) StartSetup(ctx context.Context, state State) (SetupResult, error) {
	acc, err := s.identityAccount(ctx, state)
	if err != nil {
		s.metrics.observe(opSetup, err)
		return SetupResult{}, err
	}
	res, err := s.beginTwoFactorSetup(ctx, acc)
	s.metrics.observe(opSetup, err)
	if err != nil {
		return SetupResult{}, err
	}
	s.logger.InfoContext(ctx, "2fa setup started",
		logger.UserID(acc.ID),
		logger.Component("auth"),
	)
	return res, nil
}

// ConfirmSetup enables 2FA once the user proves possession of the secret.
func (s *Service) ConfirmSetup(ctx context.Context, state State, code string) error {
	err := s.confirmSetup(ctx, state, code)
	s.metrics.observe(opEnable, err)
	return err
}

func (s *Service) confirmSetup(ctx context.Context, state State, code string) error {
	acc, err := s.identityAccount(ctx, state)
	if err != nil {
		return err
	}
	if err := validator.Apply(validator.RequiredString("code", code)); err != nil {
		return err
	}
	if err := s.confirmTwoFactorEnable(ctx, acc, code); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "2fa enabled", logger.UserID(acc.ID), logger.Component("auth"))
	s.audit(ctx, AuditTwoFactorEnabled, acc, nil)
	return nil
}

// Disable turns 2FA off. Both the password and a current code are required.
func (s *Service) Disable(ctx context.Context, state State, in DisableInput) error {
	acc, err := s.disable(ctx, state, in)
	s.metrics.observe(opDisable, err)
	s.audit(ctx, AuditTwoFactorDisable, acc, err)
	return err
}

func (s *Service) disable(ctx context.Context, state State, in DisableInput) (*Account, error) {
	acc, err := s.identityAccount(ctx, state)
	if err != nil {
		return nil, err
	}
	if err := validator.Apply(
		validator.RequiredString("password", in.Password),
		validator.RequiredString("code", in.Code),
	); err != nil {
		return nil, err
	}
	if err := s.disableTwoFactor(ctx, acc, in.Password, in.Code); err != nil {
		return acc, err
	}
	s.logger.InfoContext(ctx, "2fa disabled", logger.UserID(acc.ID), logger.Component("auth"))
	return acc, nil
}

// Status reports the signed-in account's enrollment state.
func (s *Service) Status(ctx context.Context, state State) (TwoFactorStatus, error) {
	acc, err := s.identityAccount(ctx, state)
	if err != nil {
		return "", err
	}
	return acc.TwoFactorStatus(), nil
}
