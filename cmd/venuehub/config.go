package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/venuehub/pkg/clientip"
	"github.com/dmitrymomot/venuehub/pkg/fingerprint"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/requestid"
	"github.com/dmitrymomot/venuehub/pkg/session"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

type appConfig struct {
	Env           string        `env:"APP_ENV" envDefault:"development"`
	Name          string        `env:"APP_NAME" envDefault:"venuehub"`
	TrustProxy    bool          `env:"APP_TRUST_PROXY" envDefault:"false"`
	CORSOrigins   []string      `env:"APP_CORS_ORIGINS" envSeparator:","`
	HealthTimeout time.Duration `env:"APP_HEALTH_TIMEOUT" envDefault:"3s"`

	// SessionBinding ties sessions to the device that created them:
	// none, browser, or browser_ip.
	SessionBinding string `env:"APP_SESSION_BINDING" envDefault:"none"`
	// SessionHeader, when set, also accepts and returns the session token in
	// this header for clients without cookies.
	SessionHeader string `env:"APP_SESSION_HEADER"`
}

var errUnknownSessionBinding = errors.New("unknown session binding")

func sessionFingerprint(mode string) (session.FingerprintFunc, error) {
	switch mode {
	case "", "none":
		return nil, nil
	case "browser":
		return fingerprint.GenerateWithoutIP, nil
	case "browser_ip":
		return fingerprint.Generate, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownSessionBinding, mode)
	}
}

// Account storage drivers.
const (
	driverMemory   = "memory"
	driverMongo    = "mongo"
	driverPostgres = "postgres"
)

type authConfig struct {
	Storage      string `env:"AUTH_STORAGE" envDefault:"mongo"`
	SeedDefaults bool   `env:"AUTH_SEED_DEFAULTS" envDefault:"false"`
	AutoMigrate  bool   `env:"AUTH_AUTO_MIGRATE" envDefault:"true"`
	BcryptCost   int    `env:"AUTH_BCRYPT_COST" envDefault:"12"`

	// AuditCapacity bounds the in-memory audit trail.
	AuditCapacity int `env:"AUTH_AUDIT_CAPACITY" envDefault:"1000"`

	// Per-account budget for TOTP and emergency code guesses.
	AttemptLimit  int           `env:"AUTH_ATTEMPT_LIMIT" envDefault:"5"`
	AttemptWindow time.Duration `env:"AUTH_ATTEMPT_WINDOW" envDefault:"5m"`
}

// rateLimitConfig covers the per-IP limits on unauthenticated endpoints.
type rateLimitConfig struct {
	LoginRequests    int           `env:"RATE_LIMIT_LOGIN_REQUESTS" envDefault:"10"`
	LoginWindow      time.Duration `env:"RATE_LIMIT_LOGIN_WINDOW" envDefault:"1m"`
	RecoveryRequests int           `env:"RATE_LIMIT_RECOVERY_REQUESTS" envDefault:"5"`
	RecoveryWindow   time.Duration `env:"RATE_LIMIT_RECOVERY_WINDOW" envDefault:"15m"`
}

func newLogger(app appConfig) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			authhttp.LoggerExtractor(),
		),
	)
}
