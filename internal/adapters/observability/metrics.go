package observability

import (
	"EventBus/internal/core/ports"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ ports.Observer = (*Metrics)(nil)

// Metrics records bus activity as Prometheus metrics.
type Metrics struct {
	postsTotal       *prometheus.CounterVec
	deliveriesTotal  *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	haltsTotal       *prometheus.CounterVec
	lifecycleErrors  *prometheus.CounterVec
	holders          *prometheus.GaugeVec
}

// NewMetrics registers the bus metrics with registry.
// If registry is nil, uses the default Prometheus registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		postsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbus_posts_total",
				Help: "Total number of events posted",
			},
			[]string{"bus", "event"},
		),
		deliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbus_deliveries_total",
				Help: "Total number of events delivered to holders",
			},
			[]string{"bus", "holder", "result"}, // result: ok, error
		),
		deliveryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventbus_delivery_duration_seconds",
				Help:    "Holder OnEvent duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"bus", "holder"},
		),
		haltsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbus_halts_total",
				Help: "Total number of dispatches stopped by a holder",
			},
			[]string{"bus", "holder"},
		),
		lifecycleErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbus_lifecycle_errors_total",
				Help: "Total number of failed start, finish and runnable tasks",
			},
			[]string{"bus", "stage"},
		),
		holders: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eventbus_holders",
				Help: "Number of holders registered per bus",
			},
			[]string{"bus"},
		),
	}
}

// Posted counts a post.
func (m *Metrics) Posted(bus, event string) {
	m.postsTotal.WithLabelValues(bus, event).Inc()
}

// Delivered counts a delivery and records its duration.
func (m *Metrics) Delivered(bus, holder, _ string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.deliveriesTotal.WithLabelValues(bus, holder, result).Inc()
	m.deliveryDuration.WithLabelValues(bus, holder).Observe(time.Since(started).Seconds())
}

// Halted counts a short-circuited dispatch.
func (m *Metrics) Halted(bus, holder, _ string) {
	m.haltsTotal.WithLabelValues(bus, holder).Inc()
}

// LifecycleFailed counts a failed lifecycle task.
func (m *Metrics) LifecycleFailed(bus, _, stage string, _ error) {
	m.lifecycleErrors.WithLabelValues(bus, stage).Inc()
}

// HoldersChanged sets the holder gauge.
func (m *Metrics) HoldersChanged(bus string, count int) {
	m.holders.WithLabelValues(bus).Set(float64(count))
}
