package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for lead vetting.
type Metrics struct {
	// Verdicts by result and by how they were produced
	Verdicts *prometheus.CounterVec

	// Enrichment provider failures by provider role
	UpstreamFailures *prometheus.CounterVec

	// Enrichment provider latency by provider role
	ProviderLatency *prometheus.HistogramVec

	// Overall vetting latency including provider calls
	VetLatency prometheus.Histogram
}

// New creates a Metrics instance registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_vetting_verdicts_total",
			Help: "Total verdicts by result and source",
		}, []string{"result", "source"}), // source: "partner", "cache", "providers", "fallback"

		UpstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_vetting_upstream_failures_total",
			Help: "Total enrichment provider failures by provider role",
		}, []string{"provider"}),

		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lead_vetting_provider_duration_seconds",
			Help:    "Duration of enrichment provider calls by provider role",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),

		VetLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lead_vetting_vet_duration_seconds",
			Help:    "Duration of a full vetting request",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementVerdict records a verdict.
func (m *Metrics) IncrementVerdict(result, source string) {
	if m != nil {
		m.Verdicts.WithLabelValues(result, source).Inc()
	}
}

// IncrementUpstreamFailure records a failed provider call.
func (m *Metrics) IncrementUpstreamFailure(provider string) {
	if m != nil {
		m.UpstreamFailures.WithLabelValues(provider).Inc()
	}
}

// ObserveProviderLatency records the duration of a provider call.
func (m *Metrics) ObserveProviderLatency(provider string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// ObserveVetLatency records the duration of a vetting request.
func (m *Metrics) ObserveVetLatency(d time.Duration) {
	if m != nil {
		m.VetLatency.Observe(d.Seconds())
	}
}
