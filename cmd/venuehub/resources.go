package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/config"
	"github.com/dmitrymomot/venuehub/pkg/httpserver"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	pkgmongo "github.com/dmitrymomot/venuehub/pkg/mongo"
	"github.com/dmitrymomot/venuehub/pkg/pg"
	"github.com/dmitrymomot/venuehub/pkg/ratelimiter"
	pkgredis "github.com/dmitrymomot/venuehub/pkg/redis"
	"github.com/dmitrymomot/venuehub/pkg/totp"
)

var errUnknownStorage = errors.New("unknown account storage driver")

const closeTimeout = 10 * time.Second

// resources tracks the connections a command opened, their readiness checks
// and how to release them.
type resources struct {
	log     *slog.Logger
	checks  []httpserver.Check
	closers []func(context.Context) error
}

func newResources(log *slog.Logger) *resources {
	return &resources{log: log}
}

func (r *resources) onClose(fn func(context.Context) error) {
	r.closers = append(r.closers, fn)
}

// close releases everything in reverse order of acquisition.
func (r *resources) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			r.log.ErrorContext(ctx, "failed to release resource", logger.Error(err))
		}
	}
	r.closers = nil
}

// redis connects when REDIS_URL is set and returns nil otherwise.
func (r *resources) redis(ctx context.Context, cfg pkgredis.Config) (*goredis.Client, error) {
	if cfg.ConnectionURL == "" {
		r.log.InfoContext(ctx, "REDIS_URL is empty, sessions and rate limits stay in memory")
		return nil, nil
	}
	client, err := pkgredis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.onClose(func(context.Context) error { return client.Close() })
	r.checks = append(r.checks, httpserver.Check{Name: "redis", Fn: pkgredis.Healthcheck(client)})
	return client, nil
}

func (r *resources) postgres(ctx context.Context) (*pgxpool.Pool, pg.Config, error) {
	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return nil, cfg, err
	}
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, cfg, err
	}
	r.onClose(func(context.Context) error {
		pool.Close()
		return nil
	})
	r.checks = append(r.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	return pool, cfg, nil
}

// stores opens the account storage selected by AUTH_STORAGE and the audit
// trail kept alongside it.
func (r *resources) stores(ctx context.Context, cfg authConfig) (auth.AccountStorage, audit.Storage, error) {
	switch cfg.Storage {
	case driverMemory:
		r.log.WarnContext(ctx, "accounts and the audit trail are kept in memory and lost on restart")
		return auth.NewMemoryStorage(), audit.NewMemoryStorage(cfg.AuditCapacity), nil

	case driverMongo:
		var mcfg pkgmongo.Config
		if err := config.Load(&mcfg); err != nil {
			return nil, nil, err
		}
		client, db, err := pkgmongo.ConnectDatabase(ctx, mcfg)
		if err != nil {
			return nil, nil, err
		}
		r.onClose(client.Disconnect)
		r.checks = append(r.checks, httpserver.Check{Name: "mongo", Fn: pkgmongo.Healthcheck(client)})

		accounts := auth.NewMongoStorage(db, auth.DefaultAccountsCollection)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		trail := audit.NewMongoStorage(db, audit.DefaultCollection)
		if err := trail.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return accounts, trail, nil

	case driverPostgres:
		pool, pgCfg, err := r.postgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx, pool, pgCfg, auth.Migrations, auth.MigrationsDir, pg.MigrateUp, r.log); err != nil {
				return nil, nil, err
			}
		}
		return auth.NewPostgresStorage(pool), audit.NewPostgresStorage(pool), nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownStorage, cfg.Storage)
	}
}

// authService builds the auth service and its audit trail over the
// configured storage. A nil limiter store disables per-account attempt limits.
func (r *resources) authService(ctx context.Context, cfg authConfig, limiterStore ratelimiter.Store, metrics *auth.Metrics) (*auth.Service, *audit.Logger, error) {
	var totpCfg totp.Config
	if err := config.Load(&totpCfg); err != nil {
		return nil, nil, err
	}
	sealer, err := totp.NewSecretBoxFromConfig(totpCfg)
	if err != nil {
		return nil, nil, err
	}
	storage, trailStore, err := r.stores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	trail := newAuditLogger(trailStore)

	opts := []auth.Option{
		auth.WithLogger(r.log),
		auth.WithMetrics(metrics),
		auth.WithAuditor(trail),
		auth.WithIssuer(totpCfg.Issuer),
		auth.WithWindows(totpCfg.EnableWindow, totpCfg.DisableWindow),
		auth.WithBcryptCost(cfg.BcryptCost),
	}
	if limiterStore != nil && cfg.AttemptLimit > 0 {
		bucket, err := ratelimiter.NewBucket(limiterStore, ratelimiter.PerWindow(cfg.AttemptLimit, cfg.AttemptWindow))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, auth.WithAttemptLimiter(bucket))
	}
	return auth.NewService(storage, sealer, opts...), trail, nil
}
