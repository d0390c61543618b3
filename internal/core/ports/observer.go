package ports

import "time"

// Lifecycle stages reported to an Observer.
const (
	StageStart    = "start"
	StageFinish   = "finish"
	StageRunnable = "runnable"
)

// Observer receives bus activity for metrics and tracing.
// Implementations must be safe for concurrent use.
type Observer interface {
	// Posted is called when an event is submitted to a bus runner.
	Posted(bus, event string)

	// Delivered is called after a holder's OnEvent returned.
	// err is non-nil when the holder failed or panicked.
	Delivered(bus, holder, event string, started time.Time, err error)

	// Halted is called when a holder stopped the dispatch chain.
	Halted(bus, holder, event string)

	// LifecycleFailed is called when Start, Finish or a runnable failed.
	LifecycleFailed(bus, holder, stage string, err error)

	// HoldersChanged is called with the new holder count of a bus.
	HoldersChanged(bus string, count int)
}
