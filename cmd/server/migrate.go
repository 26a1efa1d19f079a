package main

import (
	"github.com/urfave/cli/v2"

	"github.com/quemtemboca/marketplace-api/internal/database"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Action: func(cctx *cli.Context) error {
			ctx, env, err := loadEnv(cctx.Context)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, env.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			env.log.Info().Msg("migrations applied")
			return nil
		},
	}
}
