// Package pg connects to PostgreSQL through a pgx/v5 pool and runs goose
// migrations from an embedded filesystem.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	err = pg.Migrate(ctx, pool, cfg, auth.Migrations, auth.MigrationsDir, pg.MigrateUp, log)
//
// Healthcheck adapts the pool to the readiness probe signature used by
// cmd/venuehub.
package pg
