package eventbus

import (
	"EventBus/internal/core/domain"
	"EventBus/internal/core/ports"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Bus is one named registry of holders with its own dispatch runner.
// Holders are kept in registration order, which is the dispatch order.
type Bus struct {
	name string
	dir  *Directory
	log  zerolog.Logger

	mu         sync.RWMutex
	order      []string
	holders    map[string]*entry
	eventIndex map[string]map[string]struct{} // event name -> holder types
	runner     ports.Runner
}

// entry is a registered holder with the interests read at registration.
type entry struct {
	holder    ports.Holder
	interests []string
}

func newBus(name string, dir *Directory, runner ports.Runner) *Bus {
	return &Bus{
		name:       name,
		dir:        dir,
		log:        dir.log.With().Str("bus", name).Logger(),
		holders:    make(map[string]*entry),
		eventIndex: make(map[string]map[string]struct{}),
		runner:     runner,
	}
}

// Name returns the bus name.
func (b *Bus) Name() string {
	return b.name
}

// Runner returns the runner currently assigned to the bus.
func (b *Bus) Runner() ports.Runner {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.runner
}

// SetRunner replaces the bus runner. Only tasks submitted afterwards use it.
// A nil runner restores the directory main runner.
func (b *Bus) SetRunner(r ports.Runner) {
	if r == nil {
		r = b.dir.MainRunner()
	}
	r = resolveRunner(r, b.name)

	b.mu.Lock()
	b.runner = r
	b.mu.Unlock()

	b.logger().Debug().Msg("Runner replaced")
}

// Register adds a holder at the end of the dispatch order and schedules
// its Start.
func (b *Bus) Register(h ports.Holder) error {
	typ, err := b.validate(h, "register")
	if err != nil {
		return err
	}
	interests := h.Events()

	b.mu.Lock()
	if _, ok := b.holders[typ]; ok {
		b.mu.Unlock()
		b.logger().Warn().Str("holder", typ).Msg("Holder already registered, ignoring")
		return fmt.Errorf("%w: %s", ErrDuplicateHolder, typ)
	}
	b.add(h, interests)
	count := len(b.order)
	b.mu.Unlock()

	b.registered(h, interests, count)
	return nil
}

// RegisterOrUpdate updates the holder when its type is already registered
// and registers it otherwise.
func (b *Bus) RegisterOrUpdate(h ports.Holder) error {
	typ, err := b.validate(h, "register_or_update")
	if err != nil {
		return err
	}
	interests := h.Events()

	b.mu.Lock()
	if e, ok := b.holders[typ]; ok {
		e.holder = h
		b.mu.Unlock()
		b.logger().Debug().Str("holder", typ).Msg("Holder updated")
		return nil
	}
	b.add(h, interests)
	count := len(b.order)
	b.mu.Unlock()

	b.registered(h, interests, count)
	return nil
}

// Update replaces a registered holder in place. The event index is left
// untouched and no lifecycle hook runs.
func (b *Bus) Update(h ports.Holder) error {
	typ, err := b.validate(h, "update")
	if err != nil {
		return err
	}

	b.mu.Lock()
	e, ok := b.holders[typ]
	if ok {
		e.holder = h
	}
	b.mu.Unlock()

	if !ok {
		b.logger().Warn().Str("holder", typ).Msg("Cannot update unregistered holder")
		return fmt.Errorf("%w: %s", ErrUnknownHolder, typ)
	}
	b.logger().Debug().Str("holder", typ).Msg("Holder updated")
	return nil
}

// Unregister removes the holder with the same type as h and schedules its Finish.
func (b *Bus) Unregister(h ports.Holder) error {
	typ, err := b.validate(h, "unregister")
	if err != nil {
		return err
	}
	return b.UnregisterType(typ)
}

// UnregisterType removes the holder registered under typ and schedules its Finish.
func (b *Bus) UnregisterType(typ string) error {
	if typ == "" {
		b.logger().Warn().Str("op", "unregister").Msg("Rejected holder with empty type")
		return ErrEmptyType
	}

	b.mu.Lock()
	e, ok := b.holders[typ]
	if ok {
		b.remove(typ)
	}
	count := len(b.order)
	b.mu.Unlock()

	if !ok {
		b.logger().Warn().Str("holder", typ).Msg("Cannot unregister unknown holder")
		return fmt.Errorf("%w: %s", ErrUnknownHolder, typ)
	}

	b.dir.observer.HoldersChanged(b.name, count)
	b.logger().Info().Str("holder", typ).Msg("Holder unregistered")
	b.submitLifecycle(e.holder, ports.StageFinish, e.holder.Finish)
	return nil
}

// Clear unregisters every holder, scheduling Finish for each in dispatch
// order. The bus itself stays in its directory.
func (b *Bus) Clear() {
	b.mu.Lock()
	removed := make([]ports.Holder, 0, len(b.order))
	for _, typ := range b.order {
		removed = append(removed, b.holders[typ].holder)
	}
	b.order = nil
	b.holders = make(map[string]*entry)
	b.eventIndex = make(map[string]map[string]struct{})
	b.mu.Unlock()

	b.dir.observer.HoldersChanged(b.name, 0)
	b.logger().Info().Int("holders", len(removed)).Msg("Bus cleared")

	for _, h := range removed {
		b.submitLifecycle(h, ports.StageFinish, h.Finish)
	}
}

// Holder returns the holder registered under typ, or nil.
func (b *Bus) Holder(typ string) ports.Holder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if e, ok := b.holders[typ]; ok {
		return e.holder
	}
	return nil
}

// Holders returns the registered holders in dispatch order.
func (b *Bus) Holders() []ports.Holder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]ports.Holder, 0, len(b.order))
	for _, typ := range b.order {
		out = append(out, b.holders[typ].holder)
	}
	return out
}

// Len returns the number of registered holders.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Interested returns the holder types indexed for an event name.
func (b *Bus) Interested(event string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	set := b.eventIndex[event]
	out := make([]string, 0, len(set))
	for _, typ := range b.order {
		if _, ok := set[typ]; ok {
			out = append(out, typ)
		}
	}
	return out
}

// validate rejects nil and typeless holders and returns the holder type.
// A typed nil pointer whose Type panics counts as a nil holder.
func (b *Bus) validate(h ports.Holder, op string) (string, error) {
	typ, ok := holderType(h)
	if !ok {
		b.logger().Warn().Str("op", op).Msg("Rejected nil holder")
		return "", ErrNilHolder
	}
	if typ == "" {
		b.logger().Warn().Str("op", op).Msg("Rejected holder with empty type")
		return "", ErrEmptyType
	}
	return typ, nil
}

// holderType reads h.Type, reporting false for nil holders.
func holderType(h ports.Holder) (typ string, ok bool) {
	if h == nil {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			typ, ok = "", false
		}
	}()
	return h.Type(), true
}

// add must be called with b.mu held.
func (b *Bus) add(h ports.Holder, interests []string) {
	typ := h.Type()
	for _, event := range interests {
		set, ok := b.eventIndex[event]
		if !ok {
			set = make(map[string]struct{})
			b.eventIndex[event] = set
		}
		set[typ] = struct{}{}
	}
	b.holders[typ] = &entry{holder: h, interests: interests}
	b.order = append(b.order, typ)
}

// remove must be called with b.mu held.
func (b *Bus) remove(typ string) {
	e := b.holders[typ]
	delete(b.holders, typ)

	for i, t := range b.order {
		if t == typ {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}

	for _, event := range e.interests {
		set := b.eventIndex[event]
		delete(set, typ)
		if len(set) == 0 {
			delete(b.eventIndex, event)
		}
	}
}

// registered runs the bookkeeping that follows a successful add.
func (b *Bus) registered(h ports.Holder, interests []string, count int) {
	if level, ok := b.dir.verbosity(); ok {
		h.SetLoggingLevel(level)
	}
	b.dir.observer.HoldersChanged(b.name, count)

	event := b.logger().Info().Str("holder", h.Type())
	if len(interests) > 0 {
		event = event.Strs("events", interests)
	}
	event.Msg("Holder registered")

	b.submitLifecycle(h, ports.StageStart, h.Start)
}

// submit hands a task to the current runner.
func (b *Bus) submit(task func()) {
	b.Runner().Submit(task)
}

// submitLifecycle schedules a Start or Finish call and reports its failure.
func (b *Bus) submitLifecycle(h ports.Holder, stage string, hook func() error) {
	typ := h.Type()
	b.submit(func() {
		if err := protect(hook); err != nil {
			b.logger().Error().Err(err).
				Str("holder", typ).
				Str("stage", stage).
				Msg("Holder lifecycle hook failed")
			b.dir.observer.LifecycleFailed(b.name, typ, stage, err)
		}
	})
}

// logger returns the bus logger at the directory verbosity.
func (b *Bus) logger() *zerolog.Logger {
	l := b.log
	if level, ok := b.dir.verbosity(); ok {
		l = l.Level(level)
	}
	return &l
}

// resolveRunner asks a keyed runner for the runner of one bus.
func resolveRunner(r ports.Runner, name string) ports.Runner {
	if keyed, ok := r.(ports.KeyedRunner); ok {
		return keyed.For(name)
	}
	return r
}

// PostEvent posts ev.Name with the envelope itself as payload.
func (b *Bus) PostEvent(ev *domain.Event) error {
	if ev == nil {
		b.logger().Warn().Msg("Rejected nil event")
		return ErrNilEvent
	}
	return b.Post(ev.Name, ev)
}
