package whatif

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts resolutions and provider calls. A nil *Metrics records nothing.
type Metrics struct {
	Resolutions      *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whatif_resolutions_total",
				Help: "Multiplier resolutions by scenario, source and outcome",
			},
			[]string{"scenario", "source", "outcome"}, // outcome: ok, fallback
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whatif_provider_requests_total",
				Help: "Market data provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"}, // outcome: ok, error
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whatif_provider_request_duration_seconds",
				Help:    "Market data provider call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Resolutions, m.ProviderRequests, m.ProviderLatency)
	}
	return m
}

func (m *Metrics) resolved(s Scenario, src Source, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "fallback"
	}
	m.Resolutions.WithLabelValues(string(s), string(src), outcome).Inc()
}

func (m *Metrics) provider(name string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProviderRequests.WithLabelValues(name, outcome).Inc()
	m.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
