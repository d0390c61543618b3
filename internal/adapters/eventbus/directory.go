package eventbus

import (
	"EventBus/internal/adapters/runner"
	"EventBus/internal/core/domain"
	"EventBus/internal/core/ports"
	"EventBus/internal/shared/logger"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultName is the bus name used when none is given.
const DefaultName = "default"

// Directory is the set of buses sharing one main runner, one inspection
// list and one verbosity. Most programs use a single directory; tests
// create their own.
type Directory struct {
	log      zerolog.Logger
	observer ports.Observer

	mu         sync.RWMutex
	buses      map[string]*Bus
	order      []string
	mainRunner ports.Runner

	// setMainMu serializes SetMainRunner so the swap and the per-bus
	// reassignment are seen as one step.
	setMainMu sync.Mutex

	inspectMu sync.RWMutex
	inspected map[string]struct{}

	level    atomic.Int32
	levelSet atomic.Bool
}

// Option configures a Directory.
type Option func(*Directory)

// WithMainRunner sets the runner given to new buses. Defaults to runner.Sync.
func WithMainRunner(r ports.Runner) Option {
	return func(d *Directory) {
		if r != nil {
			d.mainRunner = r
		}
	}
}

// WithObserver reports bus activity to o.
func WithObserver(o ports.Observer) Option {
	return func(d *Directory) {
		if o != nil {
			d.observer = o
		}
	}
}

// NewDirectory creates an empty directory.
func NewDirectory(baseLogger *zerolog.Logger, opts ...Option) *Directory {
	d := &Directory{
		log:        baseLogger.With().Str("component", "eventbus").Logger(),
		observer:   nopObserver{},
		buses:      make(map[string]*Bus),
		mainRunner: runner.Sync{},
		inspected:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var (
	defaultOnce sync.Once
	defaultDir  *Directory
)

// Default returns the process-wide directory, created on first use.
func Default() *Directory {
	defaultOnce.Do(func() {
		baseLogger := logger.New(false)
		defaultDir = NewDirectory(&baseLogger)
	})
	return defaultDir
}

// Create adds a new bus. It fails with ErrDuplicateName when the name is taken.
func (d *Directory) Create(name string) (*Bus, error) {
	if name == "" {
		name = DefaultName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.buses[name]; ok {
		d.log.Warn().Str("bus", name).Msg("Event bus already exists")
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	return d.create(name), nil
}

// GetOrCreate returns the named bus, creating it when missing. An empty
// name means DefaultName.
func (d *Directory) GetOrCreate(name string) *Bus {
	if name == "" {
		name = DefaultName
	}

	d.mu.RLock()
	b, ok := d.buses[name]
	d.mu.RUnlock()
	if ok {
		return b
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.buses[name]; ok {
		return b
	}
	return d.create(name)
}

// create must be called with d.mu held.
func (d *Directory) create(name string) *Bus {
	b := newBus(name, d, resolveRunner(d.mainRunner, name))
	d.buses[name] = b
	d.order = append(d.order, name)
	d.log.Info().Str("bus", name).Msg("Event bus created")
	return b
}

// Get returns the named bus, or nil.
func (d *Directory) Get(name string) *Bus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buses[name]
}

// List returns every bus in creation order.
func (d *Directory) List() []*Bus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Bus, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.buses[name])
	}
	return out
}

// Remove drops a bus from the directory without clearing it.
// The name becomes available again.
func (d *Directory) Remove(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.buses[name]; !ok {
		return false
	}
	delete(d.buses, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.log.Info().Str("bus", name).Msg("Event bus removed")
	return true
}

// ClearAll clears every bus. Buses stay in the directory.
func (d *Directory) ClearAll() {
	for _, b := range d.List() {
		b.Clear()
	}
}

// PostAll posts an event to every bus.
func (d *Directory) PostAll(name string, payload any) error {
	if name == "" {
		d.log.Warn().Msg("Rejected event with empty name")
		return ErrEmptyEventName
	}
	for _, b := range d.List() {
		_ = b.Post(name, payload)
	}
	return nil
}

// PostAllEvent posts an envelope to every bus. The envelope is shared, so
// its fulfillment counter sees the claims of all buses.
func (d *Directory) PostAllEvent(ev *domain.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	return d.PostAll(ev.Name, ev)
}

// PostAllRunnable schedules task once on every bus.
func (d *Directory) PostAllRunnable(task func()) error {
	if task == nil {
		d.log.Warn().Msg("Rejected nil runnable")
		return ErrNilTask
	}
	for _, b := range d.List() {
		_ = b.PostRunnable(task)
	}
	return nil
}

// MainRunner returns the runner given to new buses.
func (d *Directory) MainRunner() ports.Runner {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mainRunner
}

// SetMainRunner replaces the main runner and assigns it to every existing bus.
func (d *Directory) SetMainRunner(r ports.Runner) {
	if r == nil {
		r = runner.Sync{}
	}

	d.setMainMu.Lock()
	defer d.setMainMu.Unlock()

	d.mu.Lock()
	d.mainRunner = r
	buses := make([]*Bus, 0, len(d.order))
	for _, name := range d.order {
		buses = append(buses, d.buses[name])
	}
	d.mu.Unlock()

	for _, b := range buses {
		b.SetRunner(r)
	}
	d.log.Info().Int("buses", len(buses)).Msg("Main runner replaced")
}

// SetVerbosity sets the level of bus diagnostics and forwards it to every
// registered holder. Holders registered later receive it too.
func (d *Directory) SetVerbosity(level zerolog.Level) {
	d.level.Store(int32(level))
	d.levelSet.Store(true)

	for _, b := range d.List() {
		for _, h := range b.Holders() {
			h.SetLoggingLevel(level)
		}
	}
}

// verbosity returns the level set with SetVerbosity, if any.
func (d *Directory) verbosity() (zerolog.Level, bool) {
	if !d.levelSet.Load() {
		return zerolog.NoLevel, false
	}
	return zerolog.Level(d.level.Load()), true
}

// nopObserver is used when no observer is configured.
type nopObserver struct{}

func (nopObserver) Posted(string, string)                              {}
func (nopObserver) Delivered(string, string, string, time.Time, error) {}
func (nopObserver) Halted(string, string, string)                      {}
func (nopObserver) LifecycleFailed(string, string, string, error)      {}
func (nopObserver) HoldersChanged(string, int)                         {}
