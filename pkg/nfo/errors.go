package nfo

import (
	"errors"
	"fmt"
)

// ErrNoTitle is returned when a sidecar carries neither a title nor an identifier.
var ErrNoTitle = errors.New("sidecar has no title or identifier element")

// ParseError reports a sidecar that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse sidecar '%s': %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
