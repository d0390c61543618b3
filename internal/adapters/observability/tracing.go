package observability

import (
	"EventBus/internal/core/ports"
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "EventBus/internal/adapters/eventbus"
)

var _ ports.Observer = (*Tracer)(nil)

// Tracer records every holder delivery and lifecycle failure as an
// OpenTelemetry span.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer with the given tracer provider.
// If provider is nil, uses the global tracer provider.
func NewTracer(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer(instrumentationName)}
}

// Posted does nothing: a post has no duration of its own.
func (t *Tracer) Posted(string, string) {}

// Delivered records a span covering one OnEvent call.
func (t *Tracer) Delivered(bus, holder, event string, started time.Time, err error) {
	_, span := t.tracer.Start(context.Background(), "eventbus.deliver "+event,
		trace.WithTimestamp(started),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	span.SetAttributes(
		attribute.String("eventbus.bus", bus),
		attribute.String("eventbus.holder", holder),
		attribute.String("eventbus.event", event),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Halted adds nothing: the halting delivery span already exists.
func (t *Tracer) Halted(string, string, string) {}

// LifecycleFailed records a failed lifecycle task as an error span.
func (t *Tracer) LifecycleFailed(bus, holder, stage string, err error) {
	_, span := t.tracer.Start(context.Background(), "eventbus."+stage)
	span.SetAttributes(
		attribute.String("eventbus.bus", bus),
		attribute.String("eventbus.holder", holder),
		attribute.String("eventbus.stage", stage),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// HoldersChanged does nothing.
func (t *Tracer) HoldersChanged(string, int) {}
