package domain

import (
	"EventBus/internal/core/ports"
	"sync"

	"github.com/rs/zerolog"
)

// PrintHolderName is handled by every BaseHolder: the holder logs its type.
// Holders that declare interests only receive it when they list it in Events.
const PrintHolderName = "print_holder_name"

var _ ports.Holder = (*BaseHolder)(nil)

// BaseHolder provides the default holder behaviour. Concrete holders embed it
// and override only what they need.
type BaseHolder struct {
	typ string

	mu  sync.RWMutex
	log zerolog.Logger
}

// NewBaseHolder creates a base holder with the given type.
func NewBaseHolder(typ string, baseLogger *zerolog.Logger) *BaseHolder {
	return &BaseHolder{
		typ: typ,
		log: baseLogger.With().Str("holder", typ).Logger(),
	}
}

// Type returns the holder type.
func (h *BaseHolder) Type() string {
	return h.typ
}

// Events returns nil: the holder receives everything.
func (h *BaseHolder) Events() []string {
	return nil
}

// Start does nothing.
func (h *BaseHolder) Start() error {
	return nil
}

// Finish does nothing.
func (h *BaseHolder) Finish() error {
	return nil
}

// OnEvent handles PrintHolderName and lets every event through.
func (h *BaseHolder) OnEvent(name string, _ any) (bool, error) {
	if name == PrintHolderName {
		log := h.Logger()
		log.Info().Msg("Holder name")
	}
	return true, nil
}

// SetLoggingLevel changes the minimum level of the holder logger.
func (h *BaseHolder) SetLoggingLevel(level zerolog.Level) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = h.log.Level(level)
}

// Logger returns the holder logger at its current level.
func (h *BaseHolder) Logger() *zerolog.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l := h.log
	return &l
}

// String renders "EntityHolder{type=...}".
func (h *BaseHolder) String() string {
	return "EntityHolder{type=" + h.typ + "}"
}
