package runner

import "EventBus/internal/core/ports"

var _ ports.Runner = Sync{}

// Sync runs every task inline, on the caller's goroutine.
type Sync struct{}

// Submit runs the task immediately.
func (Sync) Submit(task func()) {
	if task != nil {
		task()
	}
}
