// Package app assembles the collaborators shared by the binaries.
package app

import (
	"nregastats/internal/config"
	"nregastats/internal/db"
	"nregastats/internal/logging"
	"nregastats/internal/pkg/datagov"
	"nregastats/internal/pkg/retry"
	"nregastats/internal/registry"
	"nregastats/internal/store"
	"nregastats/internal/syncer"
)

// InitLogging configures the global logger from cfg.
func InitLogging(cfg *config.Config) {
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// OpenStore connects and migrates the database. Without DATABASE_URL it
// falls back to an in-memory store, losing everything on exit.
func OpenStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logging.Warn().Msg("DATABASE_URL is not set, using in-memory store")
		return store.NewMemory(), nil
	}

	conn, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	return store.NewGorm(conn), nil
}

// NewClient builds the upstream client from cfg.
func NewClient(cfg *config.Config) *datagov.Client {
	if cfg.DataGovAPIKey == "" {
		logging.Warn().Msg("DATA_GOV_API_KEY is not set, live syncs will be rejected upstream")
	}

	return datagov.New(datagov.Config{
		BaseURL:    cfg.DataGovBaseURL,
		APIKey:     cfg.DataGovAPIKey,
		ResourceID: cfg.DataGovResourceID,
		Timeout:    cfg.RequestTimeout,
		PageSize:   cfg.PageSize,
		RateLimit:  cfg.RateLimit,
		// config validation keeps the threshold non-negative
		BreakerThreshold: uint32(cfg.BreakerThreshold),
		BreakerCooldown:  cfg.BreakerCooldown,
		Retry: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   cfg.RetryMaxDelay,
			MaxJitter:  cfg.RetryMaxJitter,
		},
	})
}

// NewSyncer wires the orchestrator to the upstream client, the store and the static registry.
func NewSyncer(cfg *config.Config, client *datagov.Client, s store.Store) *syncer.Syncer {
	return syncer.New(syncer.Config{
		State:         cfg.StateName,
		StateDisplay:  cfg.StateDisplay,
		BackfillDelay: cfg.BackfillDelay,
	}, client, s, registry.Haryana())
}
