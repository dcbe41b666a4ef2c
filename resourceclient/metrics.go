package resourceclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache and request outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	writeErrors   *prometheus.CounterVec
}

// NewMetrics creates the client counters and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	counter := func(name, help, label string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource_client",
			Name:      name,
			Help:      help,
		}, []string{label})
	}

	m := &Metrics{
		hits:          counter("cache_hits_total", "Reads served from a fresh cache entry.", "tag"),
		misses:        counter("cache_misses_total", "Reads that needed a fetch.", "tag"),
		fetches:       counter("fetches_total", "GET requests issued by the client.", "tag"),
		fetchErrors:   counter("fetch_errors_total", "GET requests that failed.", "tag"),
		invalidations: counter("invalidations_total", "Entries marked stale by tag.", "tag"),
		writeErrors:   counter("write_errors_total", "Mutations that failed.", "method"),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.hits, m.misses, m.fetches, m.fetchErrors, m.invalidations, m.writeErrors} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) hit(tag Tag) {
	if m != nil {
		m.hits.WithLabelValues(string(tag)).Inc()
	}
}

func (m *Metrics) miss(tag Tag) {
	if m != nil {
		m.misses.WithLabelValues(string(tag)).Inc()
	}
}

func (m *Metrics) fetch(tag Tag) {
	if m != nil {
		m.fetches.WithLabelValues(string(tag)).Inc()
	}
}

func (m *Metrics) fetchError(tag Tag) {
	if m != nil {
		m.fetchErrors.WithLabelValues(string(tag)).Inc()
	}
}

func (m *Metrics) invalidated(tag Tag, n int) {
	if m != nil && n > 0 {
		m.invalidations.WithLabelValues(string(tag)).Add(float64(n))
	}
}

func (m *Metrics) writeError(method string) {
	if m != nil {
		m.writeErrors.WithLabelValues(method).Inc()
	}
}
