package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrClosed is returned when a runner is closed twice.
	ErrClosed = errors.New("runner is closed")

	// ErrUnknownKind is returned for an unsupported runner kind.
	ErrUnknownKind = errors.New("unknown runner kind")
)
