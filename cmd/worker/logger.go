package main

import (
	"fmt"
	"nregastats/internal/logging"
)

// asynqLogger routes asynq's internal logs through zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) {
	logging.Debug().Str("component", "asynq").Msg(fmt.Sprint(args...))
}

func (asynqLogger) Info(args ...interface{}) {
	logging.Info().Str("component", "asynq").Msg(fmt.Sprint(args...))
}

func (asynqLogger) Warn(args ...interface{}) {
	logging.Warn().Str("component", "asynq").Msg(fmt.Sprint(args...))
}

func (asynqLogger) Error(args ...interface{}) {
	logging.Error().Str("component", "asynq").Msg(fmt.Sprint(args...))
}

func (asynqLogger) Fatal(args ...interface{}) {
	logging.Fatal().Str("component", "asynq").Msg(fmt.Sprint(args...))
}
