package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for Operations.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

type Registry struct {
	reg               *prometheus.Registry
	Operations        *prometheus.CounterVec
	SearchResults     prometheus.Histogram
	ComplaintsCreated prometheus.Counter
	Escalations       prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "support_operations_total",
		Help: "Support operations by name and outcome.",
	}, []string{"operation", "outcome"})
	searchResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "support_search_results",
		Help:    "Number of products returned per search.",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})
	complaints := prometheus.NewCounter(prometheus.CounterOpts{Name: "support_complaints_created_total"})
	escalations := prometheus.NewCounter(prometheus.CounterOpts{Name: "support_escalations_total"})
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "support_search_cache_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "support_search_cache_misses_total"})

	r.MustRegister(operations, searchResults, complaints, escalations, hits, misses)
	return &Registry{
		reg:               r,
		Operations:        operations,
		SearchResults:     searchResults,
		ComplaintsCreated: complaints,
		Escalations:       escalations,
		CacheHits:         hits,
		CacheMisses:       misses,
	}
}

// Observe counts one finished operation.
func (r *Registry) Observe(operation, outcome string) {
	r.Operations.WithLabelValues(operation, outcome).Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
