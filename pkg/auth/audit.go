package auth

import (
	"context"

	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/logger"
)

// Audit actions written by the service.
const (
	AuditAccountCreated   = "auth.account_created"
	AuditAccountDeleted   = "auth.account_deleted"
	AuditRoleChanged      = "auth.role_changed"
	AuditPasswordChanged  = "auth.password_changed"
	AuditTwoFactorEnabled = "auth.2fa_enabled"
	AuditTwoFactorDisable = "auth.2fa_disabled"
	AuditEmergencyReset   = "auth.emergency_reset"
	AuditAdminReset       = "auth.admin_2fa_reset"
)

// Auditor receives security events. *audit.Logger satisfies it.
type Auditor interface {
	Log(ctx context.Context, action string, opts ...audit.EventOption) error
	LogError(ctx context.Context, action string, err error, opts ...audit.EventOption) error
}

// WithAuditor records account and 2FA changes to a.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// audit writes one event about acc. A failed write is logged and never fails
// the operation being audited.
func (s *Service) audit(ctx context.Context, action string, acc *Account, cause error, opts ...audit.EventOption) {
	if s.auditor == nil || acc == nil {
		return
	}
	opts = append([]audit.EventOption{
		audit.WithResource("account", acc.ID.String()),
		audit.WithMetadata("username", acc.Username),
	}, opts...)

	var err error
	if cause != nil {
		err = s.auditor.LogError(ctx, action, cause, opts...)
	} else {
		err = s.auditor.Log(ctx, action, opts...)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to write audit event",
			logger.Error(err),
			logger.Event(action),
			logger.Component("auth"),
		)
	}
}
