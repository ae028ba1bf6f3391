// Package metrics holds the Prometheus collectors of the pricing queries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quote outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	quotes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		quotes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomrate",
			Name:      "quotes_total",
			Help:      "Priced stays by query and outcome.",
		}, []string{"query", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roomrate",
			Name:      "quote_duration_seconds",
			Help:      "Time spent pricing a stay, cache lookups included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"query"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomrate",
			Name:      "cache_requests_total",
			Help:      "Quote cache lookups by result.",
		}, []string{"result"}),
	}
}

// ObserveQuote records one finished query.
func (m *Metrics) ObserveQuote(query, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(query, outcome).Inc()
	m.duration.WithLabelValues(query).Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
