package orders

import (
	"EventBus/internal/core/domain"
	"EventBus/internal/core/ports"
	"EventBus/internal/holders"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

func init() {
	holders.Register(NewBillingHolder)
}

// BillingType is the type of the billing holder.
const BillingType = "Billing"

// ErrBadPayload is returned for a payload that is not a Charge.
var ErrBadPayload = errors.New("payload is not a charge")

// BillingHolder keeps the balance of charges and refunds.
// A charge with a non-positive amount is rejected and stops the chain.
type BillingHolder struct {
	*domain.BaseHolder
	routes holders.Routes

	mu      sync.Mutex
	balance int64
	started bool
}

// NewBillingHolder creates the billing holder.
func NewBillingHolder(baseLogger *zerolog.Logger) ports.Holder {
	h := &BillingHolder{
		BaseHolder: domain.NewBaseHolder(BillingType, baseLogger),
	}
	h.routes = holders.Routes{
		EventCharge: h.charge,
		EventRefund: h.refund,
	}
	return h
}

// Events returns the routed events.
func (h *BillingHolder) Events() []string {
	return h.routes.Events()
}

// Start opens the ledger.
func (h *BillingHolder) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
	return nil
}

// Finish closes the ledger.
func (h *BillingHolder) Finish() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	h.Logger().Info().Int64("balance", h.balance).Msg("Ledger closed")
	return nil
}

// OnEvent dispatches through the route table.
func (h *BillingHolder) OnEvent(name string, payload any) (bool, error) {
	return h.routes.Dispatch(name, payload, h.BaseHolder.OnEvent)
}

// Balance returns the current balance.
func (h *BillingHolder) Balance() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.balance
}

// Started reports whether the ledger is open.
func (h *BillingHolder) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

func (h *BillingHolder) charge(payload any) (bool, error) {
	c, ev, err := chargeOf(payload)
	if err != nil {
		return true, err
	}
	if c.Amount <= 0 {
		h.Logger().Warn().Str("order_id", c.OrderID).Int64("amount", c.Amount).Msg("Rejected charge")
		return false, nil
	}

	h.mu.Lock()
	h.balance += c.Amount
	h.mu.Unlock()

	if ev != nil {
		ev.IncreaseCounter()
	}
	return true, nil
}

func (h *BillingHolder) refund(payload any) (bool, error) {
	c, ev, err := chargeOf(payload)
	if err != nil {
		return true, err
	}

	h.mu.Lock()
	h.balance -= c.Amount
	h.mu.Unlock()

	if ev != nil {
		ev.IncreaseCounter()
	}
	return true, nil
}

// chargeOf accepts a Charge, a *Charge or an envelope carrying one.
func chargeOf(payload any) (Charge, *domain.Event, error) {
	var ev *domain.Event
	if e, ok := payload.(*domain.Event); ok {
		ev = e
		payload = e.Payload
	}

	switch c := payload.(type) {
	case Charge:
		return c, ev, nil
	case *Charge:
		if c != nil {
			return *c, ev, nil
		}
	}
	return Charge{}, ev, fmt.Errorf("%w: %T", ErrBadPayload, payload)
}
