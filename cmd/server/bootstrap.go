package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quemtemboca/marketplace-api/internal/config"
	"github.com/quemtemboca/marketplace-api/internal/database"
	"github.com/quemtemboca/marketplace-api/internal/logutil"
	"github.com/quemtemboca/marketplace-api/internal/repository"
	"github.com/quemtemboca/marketplace-api/internal/service"
	"github.com/quemtemboca/marketplace-api/internal/utils"
)

// appEnv is the process-wide state shared by every command.
type appEnv struct {
	cfg config.Config
	log zerolog.Logger
}

func loadEnv(ctx context.Context) (context.Context, appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, appEnv{}, fmt.Errorf("load config: %w", err)
	}
	logger := logutil.Setup(cfg.Env, cfg.LogLevel)
	return logutil.WithLogger(ctx, logger), appEnv{cfg: cfg, log: logger}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

type services struct {
	auth  *service.AuthService
	users *service.UserService
}

// newServices wires the account services over db.  Domain events go to
// events.
func newServices(cfg config.Config, db *sql.DB, events service.EventPublisher) (services, error) {
	hasher, err := utils.NewHasher(cfg.Hash.Algorithm, cfg.Hash.BcryptCost)
	if err != nil {
		return services{}, fmt.Errorf("hasher: %w", err)
	}
	codec := utils.NewTokenCodec(cfg.Auth)
	repo := repository.NewUserRepo(db)
	return services{
		auth:  service.NewAuthService(repo, hasher, codec, events),
		users: service.NewUserService(repo, hasher, events),
	}, nil
}
