package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/quemtemboca/marketplace-api/internal/config"
	"github.com/quemtemboca/marketplace-api/internal/database"
	"github.com/quemtemboca/marketplace-api/internal/handler"
	"github.com/quemtemboca/marketplace-api/internal/middleware"
	"github.com/quemtemboca/marketplace-api/internal/queue"
	"github.com/quemtemboca/marketplace-api/internal/router"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Apply pending migrations before serving",
			},
			&cli.BoolFlag{
				Name:  "consumer",
				Usage: "Run the recovery event consumer in the same process",
				Value: true,
			},
		},
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

			if cctx.Bool("migrate") {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
			}

			publisher := queue.NewPublisher(env.cfg.AMQP.URL, env.cfg.AMQP.Enabled)
			events := queue.NewDispatcher(publisher, env.cfg.AMQP.Backlog, env.cfg.AMQP.PublishTimeout)
			go func() { _ = events.Run(ctx) }()

			svc, err := newServices(env.cfg, db, events)
			if err != nil {
				return err
			}
			rdb := config.NewRedisClient(ctx, env.cfg.Redis)
			if rdb == nil {
				env.log.Warn().Str("addr", env.cfg.Redis.Address()).Msg("redis unavailable; rate limiting and caching disabled")
			} else {
				defer rdb.Close()
			}

			e := router.New(router.Deps{
				Cfg:   env.cfg,
				DB:    db,
				Redis: rdb,
				Auth:  handler.NewAuthHandler(svc.auth),
				Users: handler.NewUserHandler(svc.users),
				Guard: middleware.AuthGuard(svc.auth, svc.users),
			}, env.log)

			if env.cfg.AMQP.Enabled && cctx.Bool("consumer") {
				go func() {
					if err := queue.StartRecoveryConsumer(ctx, env.cfg.AMQP.URL); err != nil && !errors.Is(err, context.Canceled) {
						env.log.Error().Err(err).Msg("recovery consumer stopped")
					}
				}()
			}

			addr := ":" + env.cfg.Port
			errc := make(chan error, 1)
			go func() {
				env.log.Info().Str("addr", addr).Str("env", env.cfg.Env).Msg("listening")
				errc <- e.Start(addr)
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			env.log.Info().Msg("shutting down")
			return e.Shutdown(shutdownCtx)
		},
	}
}
