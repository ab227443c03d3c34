package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the tracking gate.
type Metrics struct {
	Events        *prometheus.CounterVec
	QueueDepth    prometheus.Gauge
	QueueDropped  prometheus.Counter
	SinkFailures  prometheus.Counter
	SinkStartErrs prometheus.Counter
}

// New registers tracking collectors against reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_tracking_events_total",
			Help: "Total number of tracking events, labeled by outcome and category",
		}, []string{"outcome", "category"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "consentd_tracking_queue_depth",
			Help: "Events waiting for the analytics sink to initialize",
		}),
		QueueDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_tracking_queue_dropped_total",
			Help: "Total number of queued events dropped to respect the queue cap",
		}),
		SinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_tracking_sink_failures_total",
			Help: "Total number of events the analytics sink rejected",
		}),
		SinkStartErrs: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_tracking_sink_start_failures_total",
			Help: "Total number of failed analytics sink initializations",
		}),
	}
}

func (m *Metrics) IncrementEvent(outcome, category string) {
	m.Events.WithLabelValues(outcome, category).Inc()
}

func (m *Metrics) SetQueueDepth(depth int) {
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) IncrementQueueDropped() {
	m.QueueDropped.Inc()
}

func (m *Metrics) IncrementSinkFailure() {
	m.SinkFailures.Inc()
}

func (m *Metrics) IncrementSinkStartFailure() {
	m.SinkStartErrs.Inc()
}
