package tasks

import (
	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTaskSyncCurrent    = "task:sync_current"
	TypeTaskSyncHistorical = "task:sync_historical"
)

// --- SyncCurrent Task ---

type SyncCurrentPayload struct {
	UseMockData bool `json:"use_mock_data"`
}

// NewSyncCurrentTask creates a current-period sync task.
func NewSyncCurrentTask(useMockData bool, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(SyncCurrentPayload{UseMockData: useMockData})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskSyncCurrent, payloadBytes, opts...), nil
}

// --- SyncHistorical Task ---

type SyncHistoricalPayload struct {
	MonthsBack  int  `json:"months_back"`
	UseMockData bool `json:"use_mock_data"`
}

// NewSyncHistoricalTask creates a backfill task over the trailing monthsBack periods.
func NewSyncHistoricalTask(monthsBack int, useMockData bool, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(SyncHistoricalPayload{MonthsBack: monthsBack, UseMockData: useMockData})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskSyncHistorical, payloadBytes, opts...), nil
}
