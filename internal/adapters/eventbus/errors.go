package eventbus

import "errors"

// Sentinel errors for the eventbus package. They are returned wrapped with
// the offending name; match them with errors.Is.
var (
	// ErrDuplicateName is returned when a bus name is already taken.
	ErrDuplicateName = errors.New("event bus already exists")

	// ErrNilHolder is returned when a nil holder is registered, updated or unregistered.
	ErrNilHolder = errors.New("holder is nil")

	// ErrEmptyType is returned for a holder without a type.
	ErrEmptyType = errors.New("holder type is empty")

	// ErrDuplicateHolder is returned when a holder type is already registered.
	ErrDuplicateHolder = errors.New("holder already registered")

	// ErrUnknownHolder is returned when a holder type is not registered.
	ErrUnknownHolder = errors.New("holder not registered")

	// ErrEmptyEventName is returned when posting an event without a name.
	ErrEmptyEventName = errors.New("event name is empty")

	// ErrNilEvent is returned when posting a nil event envelope.
	ErrNilEvent = errors.New("event is nil")

	// ErrNilTask is returned when posting a nil runnable.
	ErrNilTask = errors.New("task is nil")

	// ErrHolderPanic wraps the value recovered from a panicking holder or task.
	ErrHolderPanic = errors.New("holder panicked")
)
