package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/quemtemboca/marketplace-api/internal/queue"
)

func consumeCmd() *cli.Command {
	return &cli.Command{
		Name:  "consume",
		Usage: "Run the password recovery consumer until interrupted",
		Action: func(cctx *cli.Context) error {
			ctx, env, err := loadEnv(cctx.Context)
			if err != nil {
				return err
			}
			env.log.Info().Str("queue", queue.RecoveryRequestedQueue).Msg("consuming")
			err = queue.StartRecoveryConsumer(ctx, env.cfg.AMQP.URL)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
