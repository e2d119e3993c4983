// Command api serves the artist onboarding HTTP API.
//
// @title                       Artist Onboarding API
// @version                     1.0
// @description                 Role-gated accounts, artist applications and the admin review queue.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/bandstand/onboarding-api/internal/api"
	"github.com/bandstand/onboarding-api/internal/api/handler"
	"github.com/bandstand/onboarding-api/internal/core/security"
	"github.com/bandstand/onboarding-api/internal/core/service"
	mongodb "github.com/bandstand/onboarding-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bandstand/onboarding-api/internal/infrastructure/db/redis"
	"github.com/bandstand/onboarding-api/internal/infrastructure/queue"
	"github.com/bandstand/onboarding-api/internal/pkg/config"
	"github.com/bandstand/onboarding-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; fall back to a plain JSON line.
		fallback := logger.Init(logger.Options{Service: "onboarding-api"})
		fallback.Error().Err(err).Msg("invalid configuration")
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "onboarding-api",
	})

	tokenCfg, err := security.NewTokenConfig(cfg.Auth.SigningKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL())
	if err != nil {
		log.Error().Err(err).Msg("invalid token configuration")
		return err
	}
	bcryptHasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("invalid bcrypt cost")
		return err
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Error().Err(err).Msg("mongo unavailable")
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Error().Err(err).Msg("ensure indexes")
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Error().Err(err).Msg("redis unavailable")
		return err
	}
	defer rdb.Close()

	// The pool outlives the signal context so in-flight requests can finish
	// hashing while the server drains.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := queue.NewHashPool(cfg.Auth.HashWorkers, bcryptHasher, logger.Component("hash_pool"))
	pool.Start(poolCtx)

	codec := security.NewTokenCodec(tokenCfg)
	users := mongodb.NewUserRepository(db)

	deps := api.Deps{
		Auth: service.NewAuthService(users, pool, codec, tokenCfg.TTL(), logger.Component("auth")),
		Applications: service.NewApplicationService(
			mongodb.NewApplicationRepository(db),
			mongodb.NewArtistRepository(db),
			users,
			redisdb.NewReviewLock(rdb, cfg.Redis.ReviewLockTTL),
			logger.Component("applications"),
		),
		Authenticator: security.NewGate(codec, logger.Component("gate")),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		Log:        logger.Component("http"),
		Production: cfg.IsProduction(),
	}
	if cfg.Auth.CheckLiveness {
		deps.Accounts = users
	}
	e := api.NewRouter(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("alg", tokenCfg.Algorithm()).
			Dur("token_ttl", tokenCfg.TTL()).
			Bool("liveness_check", cfg.Auth.CheckLiveness).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		err := e.Shutdown(shutdownCtx)
		stopPool()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return err
	}
	return nil
}
