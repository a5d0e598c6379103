package syncer

import (
	"fmt"
	"nregastats/internal/pkg/datagov"
	"nregastats/internal/registry"
)

// UnknownRegionError is a record whose code is neither stored nor in the registry.
type UnknownRegionError struct {
	Code string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region code: %s", e.Code)
}

func (e *UnknownRegionError) Unwrap() error {
	return registry.ErrUnknownCode
}

// PersistenceError is a storage failure for a single record.
type PersistenceError struct {
	Code   string
	Period datagov.Period
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("error processing record for %s (%s): %v", e.Code, e.Period, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// FatalSyncError is a fetch failure that ends the invocation.
type FatalSyncError struct {
	Period datagov.Period
	Err    error
}

func (e *FatalSyncError) Error() string {
	return fmt.Sprintf("fatal sync error for %s: %v", e.Period, e.Err)
}

func (e *FatalSyncError) Unwrap() error {
	return e.Err
}

// AbortedError reports records left unprocessed when the invocation ran out of time.
type AbortedError struct {
	Remaining int
	Err       error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("sync aborted with %d record(s) unprocessed: %v", e.Remaining, e.Err)
}

func (e *AbortedError) Unwrap() error {
	return e.Err
}
