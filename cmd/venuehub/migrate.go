package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/config"
	"github.com/dmitrymomot/venuehub/pkg/pg"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {up|down|status}",
		Short:     "Run Postgres schema migrations for the account store",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{pg.MigrateUp, pg.MigrateDown, pg.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var app appConfig
			if err := config.Load(&app); err != nil {
				return err
			}
			res := newResources(newLogger(app))
			defer res.close()

			pool, pgCfg, err := res.postgres(ctx)
			if err != nil {
				return err
			}
			return pg.Migrate(ctx, pool, pgCfg, auth.Migrations, auth.MigrationsDir, args[0], res.log)
		},
	}
}
