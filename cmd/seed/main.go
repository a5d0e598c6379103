package main

import (
	"context"
	"nregastats/internal/app"
	"nregastats/internal/config"
	"nregastats/internal/logging"
	"nregastats/internal/registry"
	"time"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load config")
	}
	app.InitLogging(cfg)

	if cfg.DatabaseURL == "" {
		logging.Fatal().Msg("DATABASE_URL is required to seed regions")
	}

	s, err := app.OpenStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := app.SeedRegions(ctx, s, registry.Haryana(), cfg.StateDisplay)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed regions")
	}
	logging.Info().Int("regions", n).Str("state", cfg.StateDisplay).Msg("Seeding completed")
}
