// Package metrics holds the Prometheus collectors for ledger mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Mutation results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder counts ledger mutations by operation, target kind and outcome.
type Recorder struct {
	mutations *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which tests rely on.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_mutations_total",
			Help: "Ledger mutations by operation, target kind and result.",
		}, []string{"operation", "target_kind", "result"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_count_cache_total",
			Help: "Aggregate count cache lookups by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(r.mutations, r.cacheHits)
	}
	return r
}

// Mutation records one write. A nil Recorder is a no-op.
func (r *Recorder) Mutation(operation, targetKind string, err error) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.mutations.WithLabelValues(operation, targetKind, result).Inc()
}

// CacheLookup records a count cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheHits.WithLabelValues(outcome).Inc()
}

// Mutations exposes the counter vector for tests.
func (r *Recorder) Mutations() *prometheus.CounterVec {
	return r.mutations
}
