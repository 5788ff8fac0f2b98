package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no item exists for a code.
var ErrNotFound = errors.New("not found in catalog")

// StoreError reports a catalog operation that failed, after retries where
// the failure was transient.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
