package streamer

import (
	"errors"
	"fmt"
)

// Terminal opening outcomes. Every failed open resolves to exactly one of
// these, or to a *ParseError.
var (
	// ErrNotFound reports an unreachable file.
	ErrNotFound = errors.New("streamer: publication not found")

	// ErrIncorrectCredentials reports credentials rejected by the archive
	// layer or a content protection.
	ErrIncorrectCredentials = errors.New("streamer: incorrect credentials")

	// ErrUnsupportedFormat reports that no parser claimed the content.
	ErrUnsupportedFormat = errors.New("streamer: unsupported format")

	// ErrCancelled reports that the caller withdrew interest before the
	// opening completed.
	ErrCancelled = errors.New("streamer: opening cancelled")
)

// ParseError reports a parser that recognized the format but failed on it.
// The cause is preserved opaquely.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string { return fmt.Sprintf("streamer: parsing failed: %v", e.Cause) }
func (e *ParseError) Unwrap() error { return e.Cause }
