package models

import "time"

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncRun is the append-only audit entry written once per sync invocation.
type SyncRun struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	RunID           string     `gorm:"size:36;index" json:"runId"`
	Mode            string     `gorm:"size:16" json:"mode"` // current, historical
	Status          SyncStatus `gorm:"size:16;not null" json:"status"`
	RecordsSynced   int        `json:"recordsSynced"`
	Errors          *string    `json:"errors"` // newline-joined, nil when there were none
	DurationSeconds int        `json:"durationSeconds"`
	SyncDate        time.Time  `gorm:"index;not null" json:"syncDate"`
}
