package eventbus

import (
	"EventBus/internal/core/ports"
	"fmt"
	"runtime/debug"
	"time"
)

// Post schedules the dispatch of an event on the bus runner. The payload
// may be nil.
func (b *Bus) Post(name string, payload any) error {
	if name == "" {
		b.logger().Warn().Msg("Rejected event with empty name")
		return ErrEmptyEventName
	}
	if b.dir.Inspected(name) {
		b.capture(name, payload)
	}

	b.dir.observer.Posted(b.name, name)
	b.submit(func() {
		b.dispatch(name, payload)
	})
	return nil
}

// PostRunnable schedules a task on the bus runner, ordered with the events
// posted to the same bus.
func (b *Bus) PostRunnable(task func()) error {
	if task == nil {
		b.logger().Warn().Msg("Rejected nil runnable")
		return ErrNilTask
	}

	b.submit(func() {
		err := protect(func() error {
			task()
			return nil
		})
		if err != nil {
			b.logger().Error().Err(err).Str("stage", ports.StageRunnable).Msg("Runnable failed")
			b.dir.observer.LifecycleFailed(b.name, "", ports.StageRunnable, err)
		}
	})
	return nil
}

// dispatch delivers one event to the interested holders in order until one
// of them returns false.
func (b *Bus) dispatch(name string, payload any) {
	for _, h := range b.targets(name) {
		typ := h.Type()
		started := time.Now()

		proceed, err := deliver(h, name, payload)
		b.dir.observer.Delivered(b.name, typ, name, started, err)

		if err != nil {
			b.logger().Error().Err(err).
				Str("holder", typ).
				Str("event", name).
				Interface("payload", payload).
				Msg("Holder failed to handle event")
			continue
		}
		if !proceed {
			b.logger().Debug().Str("holder", typ).Str("event", name).Msg("Dispatch halted by holder")
			b.dir.observer.Halted(b.name, typ, name)
			return
		}
	}
}

// targets snapshots, in dispatch order, the holders that receive name.
// Holders without interests receive everything; the others only receive
// the events the index maps to them.
func (b *Bus) targets(name string) []ports.Holder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	interested := b.eventIndex[name]
	out := make([]ports.Holder, 0, len(b.order))
	for _, typ := range b.order {
		e := b.holders[typ]
		if len(e.interests) > 0 {
			if _, ok := interested[typ]; !ok {
				continue
			}
		}
		out = append(out, e.holder)
	}
	return out
}

// deliver calls OnEvent, turning a panic into an error.
func deliver(h ports.Holder, name string, payload any) (proceed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			proceed = true
			err = fmt.Errorf("%w: %v\n%s", ErrHolderPanic, r, debug.Stack())
		}
	}()
	return h.OnEvent(name, payload)
}

// protect calls fn, turning a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrHolderPanic, r, debug.Stack())
		}
	}()
	return fn()
}
