package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/quemtemboca/marketplace-api/internal/handler"
	"github.com/quemtemboca/marketplace-api/internal/queue"
	"github.com/quemtemboca/marketplace-api/internal/service"
)

func createAdminCmd() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create an administrator account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
		},
		Action: func(cctx *cli.Context) error {
			in, err := adminInput(cctx.String("email"), cctx.String("username"), cctx.String("password"))
			if err != nil {
				return err
			}
			ctx, env, err := loadEnv(cctx.Context)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, env.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			events := queue.NewPublisher(env.cfg.AMQP.URL, env.cfg.AMQP.Enabled)
			svc, err := newServices(env.cfg, db, events)
			if err != nil {
				return err
			}
			u, err := svc.users.Register(ctx, in)
			if err != nil {
				return err
			}
			env.log.Info().Uint64("id", u.ID).Str("username", u.Username).Msg("admin created")
			return nil
		},
	}
}

// adminInput checks the flags against the registration rules of the API.
func adminInput(email, username, password string) (service.RegisterInput, error) {
	req := handler.CreateUserRequest{Username: username, Email: email, Password: password}
	if err := handler.NewRequestValidator().Validate(&req); err != nil {
		return service.RegisterInput{}, fmt.Errorf("invalid admin account: %w", err)
	}
	return service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  true,
	}, nil
}
