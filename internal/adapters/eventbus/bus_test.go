package eventbus

import (
	"EventBus/internal/core/ports"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func types(hs []ports.Holder) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Type())
	}
	return out
}

func TestBus_Register(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	h1 := newRecordingHolder("SampleHolder", j)
	require.NoError(t, bus.Register(h1))
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, []string{"SampleHolder:start"}, j.all())

	// Same type again is rejected
	err := bus.Register(newRecordingHolder("SampleHolder", j))
	assert.ErrorIs(t, err, ErrDuplicateHolder)
	assert.Equal(t, 1, bus.Len())
	assert.Same(t, h1, bus.Holder("SampleHolder"))

	// nil and typeless holders are rejected
	assert.ErrorIs(t, bus.Register(nil), ErrNilHolder)
	assert.ErrorIs(t, bus.Register(newRecordingHolder("", j)), ErrEmptyType)
	assert.Equal(t, 1, bus.Len())

	// Start ran only once
	assert.Equal(t, []string{"SampleHolder:start"}, j.all())
}

func TestBus_Register_Concurrent(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	const n = 32
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = bus.Register(newRecordingHolder("SampleHolder", j, "a"))
		}(i)
	}
	wg.Wait()

	succeeded, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateHolder):
			duplicates++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, duplicates)
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, []string{"SampleHolder"}, bus.Interested("a"))
	assert.Equal(t, []string{"SampleHolder:start"}, j.all())
}

func TestBus_TypedNilHolder(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	var h *recordingHolder

	assert.ErrorIs(t, bus.Register(h), ErrNilHolder)
	assert.ErrorIs(t, bus.RegisterOrUpdate(h), ErrNilHolder)
	assert.ErrorIs(t, bus.Update(h), ErrNilHolder)
	assert.ErrorIs(t, bus.Unregister(h), ErrNilHolder)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_OrderPreservation(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	h1 := newRecordingHolder("H1", j)
	h2 := newRecordingHolder("H2", j)
	h3 := newRecordingHolder("H3", j)
	require.NoError(t, bus.Register(h1))
	require.NoError(t, bus.Register(h2))
	require.NoError(t, bus.Register(h3))
	assert.Equal(t, []string{"H1", "H2", "H3"}, types(bus.Holders()))

	// 1. Update keeps the position
	h2b := newRecordingHolder("H2", j)
	require.NoError(t, bus.Update(h2b))
	holders := bus.Holders()
	require.Len(t, holders, 3)
	assert.Same(t, h1, holders[0])
	assert.Same(t, h2b, holders[1])
	assert.Same(t, h3, holders[2])

	// 2. Unregister then register moves to the end
	require.NoError(t, bus.Unregister(h2b))
	h2c := newRecordingHolder("H2", j)
	require.NoError(t, bus.Register(h2c))
	holders = bus.Holders()
	require.Len(t, holders, 3)
	assert.Same(t, h1, holders[0])
	assert.Same(t, h3, holders[1])
	assert.Same(t, h2c, holders[2])
}

func TestBus_Update(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")

	original := newMockHolder("Sample", []string{"a"})
	require.NoError(t, bus.Register(original))

	// Replacement declares other interests; they must not be read.
	replacement := new(MockHolder)
	replacement.On("Type").Return("Sample")
	replacement.On("OnEvent", "a", nil).Return(true, nil).Once()

	require.NoError(t, bus.Update(replacement))
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, []string{"Sample"}, bus.Interested("a"))

	require.NoError(t, bus.Post("a", nil))
	require.NoError(t, bus.Post("b", nil))

	replacement.AssertExpectations(t)
	replacement.AssertNotCalled(t, "Events")
	replacement.AssertNotCalled(t, "Start")
	replacement.AssertNotCalled(t, "Finish")
	original.AssertNumberOfCalls(t, "Start", 1)
	original.AssertNotCalled(t, "Finish")
	original.AssertNotCalled(t, "OnEvent", mock.Anything, mock.Anything)
}

func TestBus_Update_Rejected(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}
	require.NoError(t, bus.Register(newRecordingHolder("H1", j)))

	assert.ErrorIs(t, bus.Update(nil), ErrNilHolder)
	assert.ErrorIs(t, bus.Update(newRecordingHolder("", j)), ErrEmptyType)
	assert.ErrorIs(t, bus.Update(newRecordingHolder("H3", j)), ErrUnknownHolder)
	assert.Equal(t, []string{"H1"}, types(bus.Holders()))
	assert.Nil(t, bus.Holder("H3"))
}

func TestBus_RegisterOrUpdate(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	h1 := newRecordingHolder("H1", j)
	require.NoError(t, bus.Register(h1))
	require.NoError(t, bus.Register(newRecordingHolder("H2", j)))

	h1b := newRecordingHolder("H1", j)
	require.NoError(t, bus.RegisterOrUpdate(h1b))
	require.NoError(t, bus.RegisterOrUpdate(newRecordingHolder("H3", j)))

	assert.Equal(t, []string{"H1", "H2", "H3"}, types(bus.Holders()))
	assert.Same(t, h1b, bus.Holder("H1"))
	// Only real registrations start a holder
	assert.Equal(t, []string{"H1:start", "H2:start", "H3:start"}, j.all())

	assert.ErrorIs(t, bus.RegisterOrUpdate(nil), ErrNilHolder)
}

func TestBus_Unregister(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	h1 := newRecordingHolder("H1", j, "a")
	h2 := newRecordingHolder("H2", j, "a", "b")
	require.NoError(t, bus.Register(h1))
	require.NoError(t, bus.Register(h2))

	require.NoError(t, bus.UnregisterType("H2"))
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, []string{"H1"}, bus.Interested("a"))
	assert.Empty(t, bus.Interested("b"))
	assert.Contains(t, j.all(), "H2:finish")

	// Unregistering again is a no-op
	assert.ErrorIs(t, bus.UnregisterType("H2"), ErrUnknownHolder)
	assert.ErrorIs(t, bus.Unregister(h2), ErrUnknownHolder)
	assert.Equal(t, 1, bus.Len())

	assert.ErrorIs(t, bus.Unregister(nil), ErrNilHolder)
	assert.ErrorIs(t, bus.UnregisterType(""), ErrEmptyType)
	assert.Equal(t, 1, bus.Len())

	require.NoError(t, bus.Unregister(h1))
	assert.Equal(t, 0, bus.Len())
	assert.Empty(t, bus.Interested("a"))

	finishes := 0
	for _, e := range j.all() {
		if e == "H1:finish" || e == "H2:finish" {
			finishes++
		}
	}
	assert.Equal(t, 2, finishes)
}

func TestBus_Clear(t *testing.T) {
	dir := newTestDirectory()
	bus := dir.GetOrCreate("main")
	other := dir.GetOrCreate("other")

	h1 := newMockHolder("H1", nil)
	h2 := newMockHolder("H2", []string{"a"})
	require.NoError(t, bus.Register(h1))
	require.NoError(t, bus.Register(h2))
	require.NoError(t, other.Register(newMockHolder("H1", nil)))

	bus.Clear()

	assert.Equal(t, 0, bus.Len())
	assert.Empty(t, bus.Interested("a"))
	h1.AssertNumberOfCalls(t, "Finish", 1)
	h2.AssertNumberOfCalls(t, "Finish", 1)

	// The bus stays in the directory, the other bus is untouched
	assert.Same(t, bus, dir.Get("main"))
	assert.Equal(t, 1, other.Len())

	// and can be used again
	require.NoError(t, bus.Register(newMockHolder("H1", nil)))
	assert.Equal(t, 1, bus.Len())
}

func TestBus_LifecycleFailureIsolation(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	failing := newRecordingHolder("Failing", j)
	failing.startErr = errBoom
	panicking := newRecordingHolder("Panicking", j)
	panicking.startPanic = true

	require.NoError(t, bus.Register(failing))
	require.NoError(t, bus.Register(panicking))
	require.NoError(t, bus.Register(newRecordingHolder("Healthy", j)))

	assert.Equal(t, []string{"Failing", "Panicking", "Healthy"}, types(bus.Holders()))
	assert.Equal(t, []string{"Failing:start", "Panicking:start", "Healthy:start"}, j.all())

	require.NoError(t, bus.Post("x", nil))
	assert.Equal(t, []string{"Failing:x", "Panicking:x", "Healthy:x"}, j.all()[3:])
}

func TestBus_SetRunner(t *testing.T) {
	dir := newTestDirectory()
	bus := dir.GetOrCreate("main")
	j := &journal{}

	counting := &countingRunner{}
	bus.SetRunner(counting)
	assert.Same(t, counting, bus.Runner())

	require.NoError(t, bus.Register(newRecordingHolder("H1", j)))
	require.NoError(t, bus.Post("x", nil))
	assert.Equal(t, 2, counting.submitted())

	// nil restores the main runner
	bus.SetRunner(nil)
	assert.Equal(t, dir.MainRunner(), bus.Runner())
	require.NoError(t, bus.Post("x", nil))
	assert.Equal(t, 2, counting.submitted())
}

func TestBus_LifecycleIsSubmitted(t *testing.T) {
	bus := newTestDirectory().GetOrCreate("main")
	j := &journal{}

	// Tasks are held back until the test runs them
	var queued []func()
	bus.SetRunner(ports.RunnerFunc(func(task func()) {
		queued = append(queued, task)
	}))

	require.NoError(t, bus.Register(newRecordingHolder("H1", j)))
	require.NoError(t, bus.Post("x", nil))
	require.NoError(t, bus.UnregisterType("H1"))

	// Registration state changed immediately, nothing ran yet
	assert.Equal(t, 0, bus.Len())
	assert.Empty(t, j.all())
	require.Len(t, queued, 3)

	for _, task := range queued {
		task()
	}
	// The event was posted while H1 was registered but dispatched after
	// it left, so only the lifecycle hooks ran.
	assert.Equal(t, []string{"H1:start", "H1:finish"}, j.all())
}
