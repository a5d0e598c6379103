package main

import (
	"nregastats/internal/app"
	"nregastats/internal/config"
	"nregastats/internal/logging"
	"nregastats/internal/tasks"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	app.InitLogging(cfg)

	s, err := app.OpenStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logging.Info().Msg("Worker connected to database.")

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse Redis URL")
	}

	var scheduler *asynq.Scheduler
	if cfg.SyncEnabled {
		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

		syncTask, err := tasks.NewSyncCurrentTask(false)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create sync task")
		}

		entryID, err := scheduler.Register(cfg.SyncCronSchedule, syncTask,
			asynq.Queue("default"),
			asynq.Timeout(cfg.SyncTimeout),
			asynq.MaxRetry(0), // the next scheduled run is the retry
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to register periodic task")
		}
		logging.Info().Str("task", syncTask.Type()).Str("entry_id", entryID).Str("schedule", cfg.SyncCronSchedule).Msg("Registered periodic task")
	} else {
		logging.Info().Msg("Scheduled sync disabled, serving queued tasks only")
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 3,
			},
			// backfills and scheduled runs must not overlap on the same rows
			Concurrency: 1,
			Logger:      asynqLogger{},
		},
	)

	taskProcessor := tasks.NewTaskProcessor(app.NewSyncer(cfg, app.NewClient(cfg), s))

	mux := asynq.NewServeMux()
	taskProcessor.Register(mux)

	if scheduler != nil {
		go func() {
			logging.Info().Msg("Starting Asynq scheduler...")
			if err := scheduler.Run(); err != nil {
				logging.Fatal().Err(err).Msg("Could not run Asynq scheduler")
			}
		}()
	}

	go func() {
		logging.Info().Msg("Starting Asynq worker server...")
		if err := srv.Run(mux); err != nil {
			logging.Fatal().Err(err).Msg("Could not run Asynq worker server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logging.Info().Msg("Shutdown signal received, shutting down gracefully...")

	if scheduler != nil {
		scheduler.Shutdown()
		logging.Info().Msg("Asynq scheduler shut down.")
	}

	srv.Shutdown()
	logging.Info().Msg("Worker process shut down complete.")
}
