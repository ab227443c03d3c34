package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations.
type Metrics struct {
	PreferencesSaved      *prometheus.CounterVec
	PreferencesNotSaved   *prometheus.CounterVec
	CategoriesGranted     *prometheus.CounterVec
	ValidityChecks        *prometheus.CounterVec
	EssentialClearRefused prometheus.Counter
	ListenerFailures      prometheus.Counter

	// Performance metrics
	StoreOperationLatency *prometheus.HistogramVec
}

// New registers consent collectors against reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PreferencesSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_preferences_saved_total",
			Help: "Total number of consent decisions persisted, labeled by action",
		}, []string{"action"}),
		PreferencesNotSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_preferences_not_saved_total",
			Help: "Total number of consent decisions that failed to persist, labeled by action",
		}, []string{"action"}),
		CategoriesGranted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_categories_granted_total",
			Help: "Total number of granted categories across saved decisions, labeled by category",
		}, []string{"category"}),
		ValidityChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_validity_checks_total",
			Help: "Total number of consent validity checks, labeled by result",
		}, []string{"result"}),
		EssentialClearRefused: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_essential_clear_refused_total",
			Help: "Total number of refused attempts to clear the essential category",
		}),
		ListenerFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_listener_failures_total",
			Help: "Total number of consent-change listeners that panicked",
		}),
		StoreOperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consentd_consent_store_operation_latency_seconds",
			Help:    "Latency of consent store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementPreferencesSaved(action string) {
	m.PreferencesSaved.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementPreferencesNotSaved(action string) {
	m.PreferencesNotSaved.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementCategoryGranted(category string) {
	m.CategoriesGranted.WithLabelValues(category).Inc()
}

// IncrementValidityCheck records a HasValidConsent outcome.
func (m *Metrics) IncrementValidityCheck(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.ValidityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementEssentialClearRefused() {
	m.EssentialClearRefused.Inc()
}

func (m *Metrics) IncrementListenerFailures() {
	m.ListenerFailures.Inc()
}

// ObserveStoreOperationLatency records the latency of a store operation.
func (m *Metrics) ObserveStoreOperationLatency(operation string, durationSeconds float64) {
	m.StoreOperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}
