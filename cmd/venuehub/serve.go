package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/config"
	"github.com/dmitrymomot/venuehub/pkg/cookie"
	"github.com/dmitrymomot/venuehub/pkg/environment"
	"github.com/dmitrymomot/venuehub/pkg/httpserver"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/ratelimiter"
	pkgredis "github.com/dmitrymomot/venuehub/pkg/redis"
	"github.com/dmitrymomot/venuehub/pkg/session"
)

const rateLimitPrefix = "venuehub:ratelimit:"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	var (
		app       appConfig
		authCfg   authConfig
		limits    rateLimitConfig
		httpCfg   httpserver.Config
		sessCfg   session.Config
		cookieCfg cookie.Config
		redisCfg  pkgredis.Config
	)
	if err := errors.Join(
		config.Load(&app),
		config.Load(&authCfg),
		config.Load(&limits),
		config.Load(&httpCfg),
		config.Load(&sessCfg),
		config.Load(&cookieCfg),
		config.Load(&redisCfg),
	); err != nil {
		return err
	}

	log := newLogger(app)
	logger.SetAsDefault(log)

	env := environment.Parse(app.Env)
	if env.IsProduction() {
		sessCfg.SecureCookies = true
	}

	res := newResources(log)
	defer res.close()

	rdb, err := res.redis(ctx, redisCfg)
	if err != nil {
		return err
	}
	var (
		sessionStore session.Store
		limiterStore ratelimiter.Store
	)
	if rdb != nil {
		sessionStore = session.NewRedisStore(rdb)
		limiterStore = ratelimiter.NewRedisStore(rdb, rateLimitPrefix)
	} else {
		sessionStore = session.NewMemoryStore(sessCfg.CleanupInterval)
		mem := ratelimiter.NewMemoryStore()
		res.onClose(func(context.Context) error {
			mem.Close()
			return nil
		})
		limiterStore = mem
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authSvc, trail, err := res.authService(ctx, authCfg, limiterStore, auth.NewMetrics(reg))
	if err != nil {
		return err
	}
	if authCfg.SeedDefaults {
		if err := authSvc.SeedDefaults(ctx); err != nil {
			return err
		}
	}

	cookieMgr, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}
	sessionOpts := []session.Option{
		session.WithStore(sessionStore),
		session.WithConfig(sessCfg),
		session.WithCookieManager(cookieMgr),
	}
	if app.SessionHeader != "" {
		sessionOpts = append(sessionOpts, session.WithTransport(session.NewCompositeTransport(
			session.NewCookieTransport(cookieMgr, sessCfg.CookieName, sessCfg.SecureCookies),
			session.NewHeaderTransport(app.SessionHeader),
		)))
	}
	fp, err := sessionFingerprint(app.SessionBinding)
	if err != nil {
		return err
	}
	if fp != nil {
		sessionOpts = append(sessionOpts, session.WithFingerprint(fp))
	}
	sessions := session.New(sessionOpts...)
	res.onClose(func(context.Context) error { return sessions.Close() })

	recoveryLimit, err := recoveryLimiter(limiterStore, limits, log)
	if err != nil {
		return err
	}

	router := newRouter(routerDeps{
		app:           app,
		env:           env,
		log:           log,
		auth:          authSvc,
		trail:         trail,
		sessions:      sessions,
		loginLimit:    loginLimiter(limits),
		recoveryLimit: recoveryLimit,
		metrics:       newHTTPMetrics(reg),
		gatherer:      reg,
		checks:        res.checks,
	})

	log.InfoContext(ctx, "starting venuehub",
		logger.Component("cmd"),
		logger.Event("serve"),
	)
	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, router)
}
