package observability

import (
	"EventBus/internal/core/ports"
	"time"
)

var _ ports.Observer = Multi(nil)

// Multi forwards every call to each of its observers.
type Multi []ports.Observer

func (m Multi) Posted(bus, event string) {
	for _, o := range m {
		o.Posted(bus, event)
	}
}

func (m Multi) Delivered(bus, holder, event string, started time.Time, err error) {
	for _, o := range m {
		o.Delivered(bus, holder, event, started, err)
	}
}

func (m Multi) Halted(bus, holder, event string) {
	for _, o := range m {
		o.Halted(bus, holder, event)
	}
}

func (m Multi) LifecycleFailed(bus, holder, stage string, err error) {
	for _, o := range m {
		o.LifecycleFailed(bus, holder, stage, err)
	}
}

func (m Multi) HoldersChanged(bus string, count int) {
	for _, o := range m {
		o.HoldersChanged(bus, count)
	}
}
