package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lionfish/api/internal/cache"
	"lionfish/api/internal/config"
	"lionfish/api/internal/database"
	"lionfish/api/internal/handlers"
	"lionfish/api/internal/jobs"
	"lionfish/api/internal/log"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
	"lionfish/api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	store := repository.NewPostgresStore(dbPool)
	sessions := cache.NewRedisCredentialStore(redisClient)
	provisioner := provisioning.NewClient(cfg.Provisioner, logger)

	handlerSet := handlers.NewHandlerSet(logger, store, sessions, provisioner, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var reconciler *jobs.Reconciler
	if cfg.Reconciler.Enabled {
		reconciler = jobs.NewReconciler(store, provisioner, cfg.Reconciler, logger)
		if err := reconciler.Start(); err != nil {
			logger.Error().Err(err).Msg("reconciler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, reconciler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, reconciler *jobs.Reconciler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if reconciler != nil {
		reconciler.Stop()
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
