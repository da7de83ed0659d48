package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/ratelimiter"
)

// SecretSealer encrypts TOTP secrets before they reach storage.
// *totp.SecretBox satisfies it.
type SecretSealer interface {
	Encrypt(plain string) (string, error)
	Decrypt(sealed string) (string, error)
}

// Service implements login, 2FA enrollment, emergency recovery and account
// administration on top of AccountStorage. Session state is passed in and
// returned explicitly; the service never stores it.
type Service struct {
	storage AccountStorage
	sealer  SecretSealer
	limiter ratelimiter.RateLimiter
	metrics *Metrics
	auditor Auditor
	logger  *slog.Logger
	now     func() time.Time

	issuer        string
	enableWindow  int
	disableWindow int
	bcryptCost    int
	qrSize        int

	// dummyHash is compared against when the username is unknown so both
	// branches of a failed login cost one bcrypt comparison.
	dummyHash []byte
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAttemptLimiter throttles second-factor and emergency code attempts per account.
func WithAttemptLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for TOTP verification and login timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIssuer sets the issuer label shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithWindows sets the TOTP tolerance in steps for enable/login and for disable.
func WithWindows(enable, disable int) Option {
	return func(s *Service) {
		if enable >= 0 {
			s.enableWindow = enable
		}
		if disable >= 0 {
			s.disableWindow = disable
		}
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func WithQRSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.qrSize = px
		}
	}
}

// NewService creates the auth service.
func NewService(storage AccountStorage, sealer SecretSealer, opts ...Option) *Service {
	s := &Service{
		storage:       storage,
		sealer:        sealer,
		logger:        logger.Discard(),
		now:           time.Now,
		issuer:        "VenueHub",
		enableWindow:  1,
		disableWindow: 2,
		bcryptCost:    bcrypt.DefaultCost,
		qrSize:        256,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("venuehub-dummy-password"), s.bcryptCost)
	return s
}

// throttle consumes one attempt for key. Without a limiter every attempt is allowed.
func (s *Service) throttle(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, key)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if !res.Allowed() {
		s.logger.WarnContext(ctx, "attempt limit reached",
			slog.String("key", key),
			slog.Duration("retry_after", res.RetryAfter()),
			logger.Component("auth"),
		)
		return ErrTooManyAttempts
	}
	return nil
}

// account loads by ID and normalises storage failures.
func (s *Service) account(ctx context.Context, id uuid.UUID) (*Account, error) {
	acc, err := s.storage.GetAccountByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return acc, nil
}

// storageErr passes domain errors through and tags everything else as a storage failure.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) || errors.Is(err, ErrStorage) {
		return err
	}
	return errors.Join(ErrStorage, err)
}
