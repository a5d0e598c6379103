package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"nregastats/internal/app"
	"nregastats/internal/config"
	"nregastats/internal/logging"
	"nregastats/internal/routes"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load config")
	}
	app.InitLogging(cfg)

	s, err := app.OpenStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}

	client := app.NewClient(cfg)
	deps := routes.Dependencies{
		Store:    s,
		Syncer:   app.NewSyncer(cfg, client, s),
		Upstream: client,
	}

	// async sync requests need the worker queue
	if cfg.RedisURL != "" {
		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to parse Redis URL")
		}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		deps.Queue = asynqClient
	}

	router := routes.SetupRouter(deps, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("Shutdown signal received, shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shut down")
	}

	logging.Info().Msg("Server shut down complete.")
}
