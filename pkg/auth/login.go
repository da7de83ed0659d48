package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

// Login advances the session state machine.
//
// With username and password it verifies the password and either
// authenticates (2FA off), asks for a second factor (2FA on, no code) or
// verifies the code. While pending, the code may be sent on its own. A
// repeated login with the right password while already authenticated as the
// same account is a no-op.
//
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials and
// an anonymous state. A wrong code yields ErrInvalidTOTP and keeps the
// pending state so credentials need not be resent.
func (s *Service) Login(ctx context.Context, state State, in LoginInput) (State, LoginResult, error) {
	next, res, op, err := s.login(ctx, state, in)
	switch {
	case err != nil:
		s.metrics.observe(op, err)
	case res.Requires2FA:
		s.metrics.observeOutcome(op, "challenge")
	default:
		s.metrics.observe(op, nil)
	}
	return next, res, err
}

func (s *Service) login(ctx context.Context, state State, in LoginInput) (State, LoginResult, string, error) {
	if in.Username == "" && in.Password == "" && in.Code != "" {
		if id, ok := state.Identity(); ok {
			return state, LoginResult{Identity: &id}, opLoginChallenge, nil
		}
		if state.IsPending() {
			next, res, err := s.completeChallenge(ctx, state, in.Code)
			return next, res, opLoginChallenge, err
		}
		return state, LoginResult{}, opLoginChallenge, ErrNoPendingChallenge
	}

	if err := validator.Apply(
		validator.RequiredString("username", in.Username),
		validator.RequiredString("password", in.Password),
	); err != nil {
		return state, LoginResult{}, opLogin, err
	}

	acc, err := s.storage.GetAccountByUsername(ctx, in.Username)
	if errors.Is(err, ErrAccountNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return Anonymous(), LoginResult{}, opLogin, ErrInvalidCredentials
	}
	if err != nil {
		return Anonymous(), LoginResult{}, opLogin, storageErr(err)
	}
	if !s.verifyPassword(acc, in.Password) {
		s.logger.InfoContext(ctx, "login rejected",
			logger.UserID(acc.ID),
			logger.Event("invalid_password"),
			logger.Component("auth"),
		)
		return Anonymous(), LoginResult{}, opLogin, ErrInvalidCredentials
	}

	if id, ok := state.Identity(); ok && id.AccountID == acc.ID {
		return state, LoginResult{Identity: &id}, opLogin, nil
	}

	if !acc.TwoFactorEnabled {
		next, res := s.establish(ctx, acc)
		return next, res, opLogin, nil
	}

	pending := Pending(acc.ID, acc.Username)
	if in.Code == "" {
		s.logger.InfoContext(ctx, "second factor required",
			logger.UserID(acc.ID),
			logger.Component("auth"),
		)
		return pending, LoginResult{Requires2FA: true}, opLogin, nil
	}

	next, res, err := s.checkSecondFactor(ctx, acc, pending, in.Code)
	return next, res, opLogin, err
}

// completeChallenge verifies a code for the account held in the pending state.
func (s *Service) completeChallenge(ctx context.Context, state State, code string) (State, LoginResult, error) {
	accountID, _, _ := state.PendingAccount()
	acc, err := s.storage.GetAccountByID(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return Anonymous(), LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return state, LoginResult{}, storageErr(err)
	}
	if !acc.TwoFactorEnabled {
		// The password was already verified and the second factor has since been removed.
		next, res := s.establish(ctx, acc)
		return next, res, nil
	}
	return s.checkSecondFactor(ctx, acc, state, code)
}

func (s *Service) checkSecondFactor(ctx context.Context, acc *Account, pending State, code string) (State, LoginResult, error) {
	if err := s.throttle(ctx, totpAttemptKey(acc)); err != nil {
		return pending, LoginResult{}, err
	}
	ok, err := s.verifyTOTP(acc, code, s.enableWindow)
	if err != nil {
		return pending, LoginResult{}, err
	}
	if !ok {
		s.logger.InfoContext(ctx, "login rejected",
			logger.UserID(acc.ID),
			logger.Event("invalid_totp"),
			logger.Component("auth"),
		)
		return pending, LoginResult{}, ErrInvalidTOTP
	}
	next, res := s.establish(ctx, acc)
	return next, res, nil
}

func (s *Service) establish(ctx context.Context, acc *Account) (State, LoginResult) {
	id := Identity{
		AccountID: acc.ID,
		Username:  acc.Username,
		Role:      acc.Role,
		LoginAt:   s.now().UTC(),
	}
	s.logger.InfoContext(ctx, "login succeeded",
		logger.UserID(acc.ID),
		logger.Role(string(acc.Role)),
		slog.Bool("two_factor", acc.TwoFactorEnabled),
		logger.Component("auth"),
	)
	return Authenticated(id), LoginResult{Identity: &id}
}

// CurrentIdentity returns the authenticated identity. Pending and anonymous
// states yield ErrUnauthenticated.
func (s *Service) CurrentIdentity(state State) (Identity, error) {
	id, ok := state.Identity()
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Logout clears the identity unconditionally.
func (s *Service) Logout(State) State {
	return Anonymous()
}
