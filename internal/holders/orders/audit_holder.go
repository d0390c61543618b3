package orders

import (
	"EventBus/internal/core/domain"
	"EventBus/internal/core/ports"
	"EventBus/internal/holders"
	"sync"

	"github.com/rs/zerolog"
)

func init() {
	holders.Register(NewAuditHolder)
}

// AuditType is the type of the audit holder.
const AuditType = "Logger"

// AuditHolder records every event posted to its bus.
type AuditHolder struct {
	*domain.BaseHolder

	mu   sync.Mutex
	seen []string
}

// NewAuditHolder creates the audit holder. It declares no interests, so it
// receives every event.
func NewAuditHolder(baseLogger *zerolog.Logger) ports.Holder {
	return &AuditHolder{
		BaseHolder: domain.NewBaseHolder(AuditType, baseLogger),
	}
}

// OnEvent records the event name and lets the chain continue.
func (h *AuditHolder) OnEvent(name string, payload any) (bool, error) {
	h.mu.Lock()
	h.seen = append(h.seen, name)
	h.mu.Unlock()

	h.Logger().Debug().Str("event", name).Interface("payload", payload).Msg("Event audited")
	return h.BaseHolder.OnEvent(name, payload)
}

// Seen returns the recorded event names in arrival order.
func (h *AuditHolder) Seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}
