// Package metrics provides character repository metrics for observability
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// CharacterMetrics contains Prometheus metrics for PotterDB requests, list
// traversals and the character cache
type CharacterMetrics struct {
	registry *prometheus.Registry

	// Provider request metrics
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// Traversal metrics
	traversalPagesTotal *prometheus.CounterVec
	traversalsTotal     *prometheus.CounterVec
	traversalDuration   *prometheus.HistogramVec
	traversalCharacters *prometheus.HistogramVec

	// Cache metrics
	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter
	cachedCharacters prometheus.Gauge

	// Enhanced errors built anywhere in the process
	errorsTotal *prometheus.CounterVec
}

// NewCharacterMetrics creates and registers new character metrics
func NewCharacterMetrics(registry *prometheus.Registry) (*CharacterMetrics, error) {
	m := &CharacterMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *CharacterMetrics) initMetrics() {
	m.apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "potterdb_requests_total",
			Help: "Total number of PotterDB API requests",
		},
		[]string{"method", "status"}, // status: HTTP status code, or "error" when no response arrived
	)

	m.apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "potterdb_request_duration_seconds",
			Help: "Time taken by PotterDB API requests",
			// 10ms to ~20s, the upper buckets cover the request timeout
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
		},
		[]string{"method"},
	)

	m.traversalPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "character_traversal_pages_total",
			Help: "Total number of listing pages fetched by traversals",
		},
		[]string{"kind"}, // kind: all, filter
	)

	m.traversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "character_traversals_total",
			Help: "Total number of completed or failed traversals",
		},
		[]string{"kind", "status"}, // status: success, error
	)

	m.traversalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "character_traversal_duration_seconds",
			Help:    "Time taken by full listing traversals",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"kind"},
	)

	m.traversalCharacters = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "character_traversal_results",
			Help:    "Number of characters returned by successful traversals",
			Buckets: prometheus.ExponentialBuckets(1, BucketFactor2, BucketCount15),
		},
		[]string{"kind"},
	)

	m.cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "character_cache_hits_total",
		Help: "Total number of catalog requests served from the cache",
	})

	m.cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "character_cache_misses_total",
		Help: "Total number of catalog requests that required a traversal",
	})

	m.cachedCharacters = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "character_cache_entries",
		Help: "Number of characters in the last saved cache",
	})

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of enhanced errors by component and category",
		},
		[]string{"component", "category"},
	)
}

// getCollectors returns all collectors in order for Describe/Collect operations
func (m *CharacterMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.apiRequestsTotal,
		m.apiRequestDuration,
		m.traversalPagesTotal,
		m.traversalsTotal,
		m.traversalDuration,
		m.traversalCharacters,
		m.cacheHitsTotal,
		m.cacheMissesTotal,
		m.cachedCharacters,
		m.errorsTotal,
	}
}

// Describe implements the Collector interface
func (m *CharacterMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *CharacterMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// ObserveRequest records one PotterDB request. A zero status means the
// request failed before a response arrived.
func (m *CharacterMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	statusLabel := LabelError
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	m.apiRequestsTotal.WithLabelValues(method, statusLabel).Inc()
	m.apiRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordCacheHit records a catalog request answered from the cache
func (m *CharacterMetrics) RecordCacheHit() {
	m.cacheHitsTotal.Inc()
}

// RecordCacheMiss records a catalog request that needed a traversal
func (m *CharacterMetrics) RecordCacheMiss() {
	m.cacheMissesTotal.Inc()
}

// RecordTraversalPage records one fetched listing page
func (m *CharacterMetrics) RecordTraversalPage(kind string) {
	m.traversalPagesTotal.WithLabelValues(kind).Inc()
}

// RecordTraversal records the outcome of a traversal
func (m *CharacterMetrics) RecordTraversal(kind string, count int, duration time.Duration, err error) {
	if err != nil {
		m.traversalsTotal.WithLabelValues(kind, LabelError).Inc()
		return
	}
	m.traversalsTotal.WithLabelValues(kind, LabelSuccess).Inc()
	m.traversalDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.traversalCharacters.WithLabelValues(kind).Observe(float64(count))
}

// SetCachedCharacters updates the cached character gauge
func (m *CharacterMetrics) SetCachedCharacters(n int) {
	m.cachedCharacters.Set(float64(n))
}

// CachedCharacters returns the current value of the cached character gauge
func (m *CharacterMetrics) CachedCharacters() float64 {
	metric := &dto.Metric{}
	if err := m.cachedCharacters.Write(metric); err != nil {
		return 0
	}
	if metric.Gauge != nil && metric.Gauge.Value != nil {
		return *metric.Gauge.Value
	}
	return 0
}

// RecordError counts one enhanced error
func (m *CharacterMetrics) RecordError(component, category string) {
	m.errorsTotal.WithLabelValues(component, category).Inc()
}
