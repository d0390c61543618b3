package eventbus

import (
	"fmt"
	"runtime"
)

const maxCaptureFrames = 16

// capture logs where an inspected event was posted from.
func (b *Bus) capture(name string, payload any) {
	pcs := make([]uintptr, maxCaptureFrames)
	// skip runtime.Callers, capture and Post
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var callers []string
	for {
		frame, more := frames.Next()
		callers = append(callers, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}

	b.logger().Warn().
		Str("event", name).
		Interface("payload", payload).
		Strs("callers", callers).
		Msg("Inspected event posted")
}

// Inspect flags event names for call-site capture on every bus of the
// directory. Calling it without names clears all flags.
func (d *Directory) Inspect(names ...string) {
	d.inspectMu.Lock()
	defer d.inspectMu.Unlock()

	if len(names) == 0 {
		d.inspected = make(map[string]struct{})
		d.log.Info().Msg("Inspection cleared")
		return
	}
	for _, name := range names {
		if name != "" {
			d.inspected[name] = struct{}{}
		}
	}
	d.log.Info().Strs("events", names).Msg("Inspecting events")
}

// Inspected reports whether posts of name are captured.
func (d *Directory) Inspected(name string) bool {
	d.inspectMu.RLock()
	defer d.inspectMu.RUnlock()
	_, ok := d.inspected[name]
	return ok
}
