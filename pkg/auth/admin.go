package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

const maxUsernameLength = 64

// RequireAdmin returns the identity when state is authenticated and the
// stored account still has the admin role. The role in the session is only a
// snapshot from login, so a demoted or deleted admin is refused here.
func (s *Service) RequireAdmin(ctx context.Context, state State) (Identity, error) {
	id, err := s.CurrentIdentity(state)
	if err != nil {
		return Identity{}, err
	}
	acc, err := s.account(ctx, id.AccountID)
	if errors.Is(err, ErrAccountNotFound) {
		return Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return Identity{}, err
	}
	if !acc.IsAdmin() {
		return Identity{}, ErrForbidden
	}
	id.Username = acc.Username
	id.Role = acc.Role
	return id, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return accounts, nil
}

func (s *Service) GetAccount(ctx context.Context, username string) (*Account, error) {
	acc, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, storageErr(err)
	}
	return acc, nil
}

// CreateAccount registers a new account. Role defaults to user.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*Account, error) {
	if in.Role == "" {
		in.Role = RoleUser
	}
	if err := validator.Apply(
		validator.RequiredString("username", in.Username),
		validator.MaxLenString("username", in.Username, maxUsernameLength),
		validator.ValidUsername("username", in.Username),
		validator.RequiredString("password", in.Password),
		validator.OneOfString("role", string(in.Role), Roles),
	); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	acc := &Account{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.CreateAccount(ctx, acc); err != nil {
		return nil, storageErr(err)
	}
	s.metrics.accountChanged("create")
	s.logger.InfoContext(ctx, "account created",
		logger.UserID(acc.ID),
		logger.Role(string(acc.Role)),
		logger.Component("auth"),
	)
	s.audit(ctx, AuditAccountCreated, acc, nil, audit.WithMetadata("role", string(acc.Role)))
	return acc, nil
}

// UpdateAccount changes the password and/or role of an existing account.
// A role change drops the emergency codes, which only admins hold. Promotion
// also resets 2FA so the new admin enrols again and receives a code.
func (s *Service) UpdateAccount(ctx context.Context, username string, in UpdateAccountInput) (*Account, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	acc, err := s.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if in.Password != nil {
		if err := s.SetPassword(ctx, acc, *in.Password); err != nil {
			return nil, err
		}
		s.audit(ctx, AuditPasswordChanged, acc, nil)
	}
	if in.Role != nil && *in.Role != acc.Role {
		promote := *in.Role == RoleAdmin
		if err := s.storage.UpdateRole(ctx, acc.ID, acc.Role, *in.Role, promote); err != nil {
			if errors.Is(err, ErrStateChanged) {
				return nil, ErrAccountChanged
			}
			return nil, storageErr(err)
		}
		s.logger.InfoContext(ctx, "account role changed",
			logger.UserID(acc.ID),
			logger.Role(string(*in.Role)),
			slog.Bool("two_factor_reset", promote && acc.TwoFactorStatus() != TwoFactorDisabled),
			logger.Component("auth"),
		)
		s.audit(ctx, AuditRoleChanged, acc, nil,
			audit.WithMetadata("from", string(acc.Role)),
			audit.WithMetadata("to", string(*in.Role)),
		)
		acc.Role = *in.Role
		acc.EmergencyCodes = nil
		if promote {
			acc.TwoFactorEnabled = false
			acc.TwoFactorSecret = ""
		}
	}
	acc.UpdatedAt = s.now().UTC()
	s.metrics.accountChanged("update")
	return acc, nil
}

// DeleteAccount removes username. Admins cannot delete their own account.
func (s *Service) DeleteAccount(ctx context.Context, actor Identity, username string) error {
	acc, err := s.GetAccount(ctx, username)
	if err != nil {
		return err
	}
	if acc.ID == actor.AccountID {
		return ErrForbidden
	}
	if err := s.storage.DeleteAccount(ctx, acc.ID); err != nil {
		return storageErr(err)
	}
	s.metrics.accountChanged("delete")
	s.logger.InfoContext(ctx, "account deleted",
		logger.UserID(acc.ID),
		logger.Component("auth"),
	)
	s.audit(ctx, AuditAccountDeleted, acc, nil)
	return nil
}

// ResetTwoFactor clears 2FA for a non-admin account on an admin's behalf.
// Admin accounts must use their emergency code instead.
func (s *Service) ResetTwoFactor(ctx context.Context, username string) (*Account, error) {
	acc, err := s.GetAccount(ctx, username)
	if err == nil && acc.IsAdmin() {
		err = ErrAdminTarget
	}
	if err == nil {
		if e := s.storage.ResetTwoFactor(ctx, acc.ID); e != nil {
			err = storageErr(e)
		} else {
			acc.TwoFactorEnabled = false
			acc.TwoFactorSecret = ""
			acc.EmergencyCodes = nil
		}
	}
	s.metrics.observe(opAdminReset, err)
	s.audit(ctx, AuditAdminReset, acc, err)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// EnsureAccount creates the account when missing and reports whether it did.
func (s *Service) EnsureAccount(ctx context.Context, in CreateAccountInput) (bool, error) {
	_, err := s.storage.GetAccountByUsername(ctx, in.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return false, storageErr(err)
	}
	if _, err := s.CreateAccount(ctx, in); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SeedDefaults creates the stock admin/admin and user/user accounts when missing.
func (s *Service) SeedDefaults(ctx context.Context) error {
	defaults := []CreateAccountInput{
		{Username: "admin", Password: "admin", Role: RoleAdmin},
		{Username: "user", Password: "user", Role: RoleUser},
	}
	for _, in := range defaults {
		created, err := s.EnsureAccount(ctx, in)
		if err != nil {
			return err
		}
		if created {
			s.logger.WarnContext(ctx, "seeded default account, change its password",
				logger.Username(in.Username),
				logger.Component("auth"),
			)
		}
	}
	return nil
}

