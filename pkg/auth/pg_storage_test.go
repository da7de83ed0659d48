package auth

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/pg"
)

func TestPostgresStorage(t *testing.T) {
	t.Parallel()
	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}
	ctx := context.Background()

	testAccountStorage(t, func(t *testing.T) AccountStorage {
		schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

		admin, err := pgxpool.New(ctx, url)
		require.NoError(t, err)
		t.Cleanup(admin.Close)
		_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE") })

		cfg, err := pgxpool.ParseConfig(url)
		require.NoError(t, err)
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		require.NoError(t, err)
		t.Cleanup(pool.Close)

		require.NoError(t, pg.Migrate(ctx, pool, pg.Config{MigrationsTable: "migrations"},
			Migrations, MigrationsDir, pg.MigrateUp, logger.Discard()))
		return NewPostgresStorage(pool)
	})
}
