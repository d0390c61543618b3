package eventbus

import (
	"EventBus/internal/core/ports"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockHolder
type MockHolder struct {
	mock.Mock
}

var _ ports.Holder = (*MockHolder)(nil)

func (m *MockHolder) Type() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockHolder) Events() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockHolder) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockHolder) Finish() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockHolder) OnEvent(name string, payload any) (bool, error) {
	args := m.Called(name, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockHolder) SetLoggingLevel(level zerolog.Level) {
	m.Called(level)
}

// newMockHolder returns a mock with identity and lifecycle expectations
// already set; OnEvent expectations are left to the test.
func newMockHolder(typ string, events []string) *MockHolder {
	m := new(MockHolder)
	m.On("Type").Return(typ)
	m.On("Events").Return(events)
	m.On("Start").Return(nil)
	m.On("Finish").Return(nil)
	return m
}

// --- Recording holders ---

var errBoom = errors.New("boom")

// journal is shared by the holders of one test and records calls in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// recordingHolder writes "<type>:<event>" to its journal for every call.
type recordingHolder struct {
	typ     string
	events  []string
	journal *journal

	proceed    bool
	err        error
	panicOn    string
	startErr   error
	startPanic bool
}

func newRecordingHolder(typ string, j *journal, events ...string) *recordingHolder {
	return &recordingHolder{typ: typ, events: events, journal: j, proceed: true}
}

func (h *recordingHolder) Type() string     { return h.typ }
func (h *recordingHolder) Events() []string { return h.events }

func (h *recordingHolder) Start() error {
	h.journal.add(h.typ + ":start")
	if h.startPanic {
		panic("start exploded")
	}
	return h.startErr
}

func (h *recordingHolder) Finish() error {
	h.journal.add(h.typ + ":finish")
	return nil
}

func (h *recordingHolder) OnEvent(name string, _ any) (bool, error) {
	h.journal.add(h.typ + ":" + name)
	if name == h.panicOn {
		panic("event exploded")
	}
	return h.proceed, h.err
}

func (h *recordingHolder) SetLoggingLevel(zerolog.Level) {}

// countingRunner runs tasks inline and counts them.
type countingRunner struct {
	mu    sync.Mutex
	count int
}

func (r *countingRunner) Submit(task func()) {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	task()
}

func (r *countingRunner) submitted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// newTestDirectory returns a directory with a discarding logger and the
// synchronous runner.
func newTestDirectory(opts ...Option) *Directory {
	nopLogger := zerolog.Nop()
	return NewDirectory(&nopLogger, opts...)
}
