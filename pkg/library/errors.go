package library

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound means the catalog has no item for the code.
	ErrItemNotFound = errors.New("item not found")
	// ErrSourceMissing means the item is cataloged but its sidecar is gone.
	ErrSourceMissing = errors.New("sidecar missing on disk")
)

// Stage names the step of a sync that failed.
type Stage string

const (
	StageResolving  Stage = "resolving"
	StageParsing    Stage = "parsing"
	StagePersisting Stage = "persisting"
)

// NotFoundError is returned by the read operations for unknown codes and
// for items whose sidecar no longer exists.
type NotFoundError struct {
	Code string
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("item '%s' (%s): %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("item '%s': %v", e.Code, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// SyncError wraps any failure of SyncItemFromDisk with the stage it hit.
type SyncError struct {
	Code  string
	Path  string
	Stage Stage
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync of '%s' failed while %s '%s': %v", e.Code, e.Stage, e.Path, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
