package domain

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Event is an envelope for a posted event. It can be used as a payload when
// several holders need to "claim" the same event: each one calls
// IncreaseCounter and checks Fulfilled. The bus never reads the counter.
type Event struct {
	ID      uuid.UUID
	Name    string
	Payload any

	mu             sync.Mutex
	fulfillment    int
	maxFulfillment int
	fulfilled      bool
}

// NewEvent creates an envelope that is fulfilled after one claim.
func NewEvent(name string, payload any) *Event {
	return NewEventWithMax(name, payload, 1)
}

// NewEventWithMax creates an envelope that is fulfilled after maxFulfillment claims.
func NewEventWithMax(name string, payload any, maxFulfillment int) *Event {
	return &Event{
		ID:             uuid.New(),
		Name:           name,
		Payload:        payload,
		maxFulfillment: maxFulfillment,
	}
}

// IncreaseCounter records one more claim and returns true once the
// event is fulfilled.
func (e *Event) IncreaseCounter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.fulfillment++
	if e.fulfillment >= e.maxFulfillment {
		e.fulfilled = true
	}
	return e.fulfilled
}

// Fulfillment returns the number of claims so far.
func (e *Event) Fulfillment() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fulfillment
}

// MaxFulfillment returns the number of claims needed.
func (e *Event) MaxFulfillment() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxFulfillment
}

// SetMaxFulfillment changes the number of claims needed. It does not
// re-evaluate an already fulfilled event.
func (e *Event) SetMaxFulfillment(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxFulfillment = max
}

// Fulfilled reports whether enough claims were made.
func (e *Event) Fulfilled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fulfilled
}

// SetFulfilled forces the fulfilled flag.
func (e *Event) SetFulfilled(fulfilled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fulfilled = fulfilled
}

// String renders "name [PayloadType] (n/max)".
func (e *Event) String() string {
	payloadType := "nil"
	if e.Payload != nil {
		t := reflect.TypeOf(e.Payload)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		payloadType = t.Name()
		if payloadType == "" {
			payloadType = t.String()
		}
	}
	return fmt.Sprintf("%s [%s] (%d/%d)", e.Name, payloadType, e.Fulfillment(), e.MaxFulfillment())
}
