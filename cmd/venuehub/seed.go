package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/venuehub/pkg/config"
)

var errSeedMemory = errors.New("seeding the memory driver has no lasting effect, set AUTH_STORAGE")

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin/admin and user/user accounts when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				app     appConfig
				authCfg authConfig
			)
			if err := errors.Join(config.Load(&app), config.Load(&authCfg)); err != nil {
				return err
			}
			if authCfg.Storage == driverMemory {
				return errSeedMemory
			}
			res := newResources(newLogger(app))
			defer res.close()

			authSvc, _, err := res.authService(ctx, authCfg, nil, nil)
			if err != nil {
				return err
			}
			return authSvc.SeedDefaults(ctx)
		},
	}
}
