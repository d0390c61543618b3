package ports

import "github.com/rs/zerolog"

// Holder is the "plugin" interface every bus subscriber implements.
// A holder is identified inside a bus by its Type.
type Holder interface {
	// Type returns the stable, non-empty identity used as the registry key.
	Type() string

	// Events returns the event names this holder wants filtered delivery for.
	// nil (or empty) means the holder receives every event posted to the bus.
	// The bus reads it once, at registration.
	Events() []string

	// Start is called once after the holder was registered.
	Start() error

	// Finish is called once after the holder was unregistered or its bus cleared.
	Finish() error

	// OnEvent handles a posted event. Returning false stops the dispatch
	// for the remaining holders of this post.
	OnEvent(name string, payload any) (bool, error)

	// SetLoggingLevel configures the verbosity of holder diagnostics.
	SetLoggingLevel(level zerolog.Level)
}
