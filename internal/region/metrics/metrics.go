package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for region detection.
type Metrics struct {
	Detections       *prometheus.CounterVec
	StrategyFailures *prometheus.CounterVec
	OverrideResets   prometheus.Counter
	DetectLatency    prometheus.Histogram
	GeoIPCircuitOpen prometheus.Gauge
}

// New registers region collectors against reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Detections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_region_detections_total",
			Help: "Total number of resolved regions, labeled by source and region",
		}, []string{"source", "region"}),
		StrategyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_region_strategy_failures_total",
			Help: "Total number of detection strategies that errored or panicked, labeled by strategy",
		}, []string{"strategy"}),
		OverrideResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_region_override_resets_total",
			Help: "Total number of consent resets caused by a changed region override",
		}),
		DetectLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "consentd_region_detect_latency_seconds",
			Help:    "Latency of uncached region detection in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeoIPCircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "consentd_geoip_circuit_open",
			Help: "1 while the geolocation provider circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementDetection(source, region string) {
	m.Detections.WithLabelValues(source, region).Inc()
}

func (m *Metrics) IncrementStrategyFailure(strategy string) {
	m.StrategyFailures.WithLabelValues(strategy).Inc()
}

func (m *Metrics) IncrementOverrideResets() {
	m.OverrideResets.Inc()
}

func (m *Metrics) ObserveDetectLatency(durationSeconds float64) {
	m.DetectLatency.Observe(durationSeconds)
}

// SetGeoIPCircuitOpen records the breaker state.
func (m *Metrics) SetGeoIPCircuitOpen(open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.GeoIPCircuitOpen.Set(v)
}
