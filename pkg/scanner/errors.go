package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoots is returned when Scan is called without any library root.
	ErrNoRoots = errors.New("no library roots configured")
	// ErrAllRootsFailed is returned when not a single root could be walked.
	ErrAllRootsFailed = errors.New("all library roots failed")
	// ErrScanInProgress is returned when a scan is started while another runs.
	ErrScanInProgress = errors.New("a scan is already in progress")
)

// ConflictError records a sidecar whose code was already claimed earlier in
// the same scan.
type ConflictError struct {
	Code          string `json:"code"           yaml:"code"`
	Path          string `json:"path"           yaml:"path"`
	CanonicalPath string `json:"canonical_path" yaml:"canonical_path"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate code '%s' at '%s', already claimed by '%s'", e.Code, e.Path, e.CanonicalPath)
}

// WalkError records a directory that could not be walked.
type WalkError struct {
	Root string
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("failed to walk '%s' in root '%s': %v", e.Path, e.Root, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

func (e *WalkError) MarshalYAML() (any, error) {
	return errorView{Root: e.Root, Path: e.Path, Error: e.Err.Error()}, nil
}

func (e *WalkError) MarshalJSON() ([]byte, error) {
	return marshalView(errorView{Root: e.Root, Path: e.Path, Error: e.Err.Error()})
}

// ItemError records a sidecar whose sync failed.
type ItemError struct {
	Code string
	Path string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item '%s' at '%s': %v", e.Code, e.Path, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

func (e ItemError) MarshalYAML() (any, error) {
	return errorView{Code: e.Code, Path: e.Path, Error: e.Err.Error()}, nil
}

func (e ItemError) MarshalJSON() ([]byte, error) {
	return marshalView(errorView{Code: e.Code, Path: e.Path, Error: e.Err.Error()})
}
