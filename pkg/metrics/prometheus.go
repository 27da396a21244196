// Package metrics provides Prometheus metrics for the maifilter service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Query outcomes used as the outcome label.
const (
	OutcomeOK          = "ok"
	OutcomeHelp        = "help"
	OutcomeParseError  = "parse_error"
	OutcomeNotFound    = "not_found"
	OutcomeDisabled    = "disabled"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Catalog reload statuses.
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
)

// Manager manages all Prometheus metrics for the maifilter service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Query Metrics
	queries      *prometheus.CounterVec
	queryLatency prometheus.Histogram
	parseErrors  *prometheus.CounterVec
	lookupMisses prometheus.Counter
	lastRating   prometheus.Gauge

	// Source Metrics
	fetchLatency prometheus.Histogram
	fetchErrors  *prometheus.CounterVec

	// Cache Metrics
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheSize      *prometheus.GaugeVec
	cacheEvictions *prometheus.CounterVec

	// Catalog Metrics
	catalogSongs          prometheus.Gauge
	catalogAliases        prometheus.Gauge
	catalogReloads        *prometheus.CounterVec
	catalogReloadDuration prometheus.Histogram
	catalogLastReloadUnix prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "maifilter",
		subsystem:        "filter50",
		histogramBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the configured metric prefix.
func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Query Metrics
	m.queries = auto.NewCounterVec(
		m.counterOpts("queries_total", "Total number of filter queries by outcome"),
		[]string{"outcome"},
	)
	m.queryLatency = auto.NewHistogram(
		m.histogramOpts("query_latency_milliseconds", "End to end filter query latency in milliseconds", m.histogramBuckets),
	)
	m.parseErrors = auto.NewCounterVec(
		m.counterOpts("parse_errors_total", "Total number of rejected query tokens by reason"),
		[]string{"reason"},
	)
	m.lookupMisses = auto.NewCounter(
		m.counterOpts("lookup_misses_total", "Total number of records whose song was missing from the catalog"),
	)
	m.lastRating = auto.NewGauge(
		m.gaugeOpts("last_rating", "Total rating produced by the most recent query"),
	)

	// Source Metrics
	m.fetchLatency = auto.NewHistogram(
		m.histogramOpts("fetch_latency_milliseconds", "Prober fetch latency in milliseconds", m.histogramBuckets),
	)
	m.fetchErrors = auto.NewCounterVec(
		m.counterOpts("fetch_errors_total", "Total number of prober fetch failures by kind"),
		[]string{"kind"},
	)

	// Cache Metrics
	m.cacheHits = auto.NewCounterVec(
		m.counterOpts("cache_hits_total", "Total number of player cache hits"),
		[]string{"backend"},
	)
	m.cacheMisses = auto.NewCounterVec(
		m.counterOpts("cache_misses_total", "Total number of player cache misses"),
		[]string{"backend"},
	)
	m.cacheSize = auto.NewGaugeVec(
		m.gaugeOpts("cache_entries", "Number of entries held by the player cache"),
		[]string{"backend"},
	)
	m.cacheEvictions = auto.NewCounterVec(
		m.counterOpts("cache_evictions_total", "Total number of player cache evictions"),
		[]string{"backend"},
	)

	// Catalog Metrics
	m.catalogSongs = auto.NewGauge(
		m.gaugeOpts("catalog_songs", "Number of songs in the active catalog snapshot"),
	)
	m.catalogAliases = auto.NewGauge(
		m.gaugeOpts("catalog_aliases", "Number of alias names in the active catalog snapshot"),
	)
	m.catalogReloads = auto.NewCounterVec(
		m.counterOpts("catalog_reloads_total", "Total number of catalog loads by status"),
		[]string{"status"},
	)
	m.catalogReloadDuration = auto.NewHistogram(
		m.histogramOpts("catalog_reload_duration_milliseconds", "Catalog load duration in milliseconds", m.histogramBuckets),
	)
	m.catalogLastReloadUnix = auto.NewGauge(
		m.gaugeOpts("catalog_last_reload_unix", "Unix timestamp of the last successful catalog load"),
	)

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Enabled reports whether recording is switched on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval returns how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Query Metrics Methods.

// RecordQuery counts one query with its outcome and observes its latency.
func (m *Manager) RecordQuery(outcome string, latency time.Duration) {
	if !m.enabled {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.queryLatency.Observe(ms(latency))
}

// RecordParseError counts one rejected token.
func (m *Manager) RecordParseError(reason string) {
	if !m.enabled {
		return
	}
	m.parseErrors.WithLabelValues(reason).Inc()
}

// RecordLookupMisses adds n catalog misses.
func (m *Manager) RecordLookupMisses(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.lookupMisses.Add(float64(n))
}

// UpdateLastRating sets the rating of the most recent query.
func (m *Manager) UpdateLastRating(rating int) {
	if !m.enabled {
		return
	}
	m.lastRating.Set(float64(rating))
}

// Source Metrics Methods.

// RecordFetch observes one prober fetch. An empty kind means success.
func (m *Manager) RecordFetch(latency time.Duration, errKind string) {
	if !m.enabled {
		return
	}
	m.fetchLatency.Observe(ms(latency))
	if errKind != "" {
		m.fetchErrors.WithLabelValues(errKind).Inc()
	}
}

// Cache Metrics Methods.

// RecordCacheLookup counts a hit or a miss for backend.
func (m *Manager) RecordCacheLookup(backend string, hit bool) {
	if !m.enabled {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(backend).Inc()
		return
	}
	m.cacheMisses.WithLabelValues(backend).Inc()
}

// UpdateCacheSize sets the entry count of backend.
func (m *Manager) UpdateCacheSize(backend string, size int) {
	if !m.enabled {
		return
	}
	m.cacheSize.WithLabelValues(backend).Set(float64(size))
}

// RecordCacheEviction counts one eviction for backend.
func (m *Manager) RecordCacheEviction(backend string) {
	if !m.enabled {
		return
	}
	m.cacheEvictions.WithLabelValues(backend).Inc()
}

// Catalog Metrics Methods.

// RecordCatalogReload records the outcome of a catalog load. Sizes are only
// updated on success.
func (m *Manager) RecordCatalogReload(status string, latency time.Duration, songs, aliases int) {
	if !m.enabled {
		return
	}
	m.catalogReloads.WithLabelValues(status).Inc()
	m.catalogReloadDuration.Observe(ms(latency))
	if status != ReloadSuccess {
		return
	}
	m.catalogSongs.Set(float64(songs))
	m.catalogAliases.Set(float64(aliases))
	m.catalogLastReloadUnix.Set(float64(time.Now().Unix()))
}

// HTTP Metrics Methods.

// RecordHTTPRequest records an HTTP request and its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Error Metrics Methods.

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func (m *Manager) RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Metrics Methods.

// UpdateSystem sets memory and goroutine gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGCPause records GC pause time in milliseconds.
func (m *Manager) RecordGCPause(pauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Package level helpers recording on the global manager.

// RecordQuery counts one query on the global manager.
func RecordQuery(outcome string, latency time.Duration) { globalManager.RecordQuery(outcome, latency) }

// RecordParseError counts one rejected token on the global manager.
func RecordParseError(reason string) { globalManager.RecordParseError(reason) }

// RecordLookupMisses adds catalog misses on the global manager.
func RecordLookupMisses(n int) { globalManager.RecordLookupMisses(n) }

// UpdateLastRating sets the last rating gauge on the global manager.
func UpdateLastRating(rating int) { globalManager.UpdateLastRating(rating) }

// RecordFetch observes a prober fetch on the global manager.
func RecordFetch(latency time.Duration, errKind string) { globalManager.RecordFetch(latency, errKind) }

// RecordCacheLookup counts a cache lookup on the global manager.
func RecordCacheLookup(backend string, hit bool) { globalManager.RecordCacheLookup(backend, hit) }

// UpdateCacheSize sets the cache size gauge on the global manager.
func UpdateCacheSize(backend string, size int) { globalManager.UpdateCacheSize(backend, size) }

// RecordCacheEviction counts an eviction on the global manager.
func RecordCacheEviction(backend string) { globalManager.RecordCacheEviction(backend) }

// RecordCatalogReload records a catalog load on the global manager.
func RecordCatalogReload(status string, latency time.Duration, songs, aliases int) {
	globalManager.RecordCatalogReload(status, latency, songs, aliases)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent records a component error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByType records a typed error on the global manager.
func RecordErrorByType(errorType, severity string) { globalManager.RecordErrorByType(errorType, severity) }

// RecordErrorByEndpoint records an endpoint error on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordErrorLatency records an error latency on the global manager.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.RecordErrorLatency(component, errorType, latencyMs)
}

// UpdateSystem sets system gauges on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int) { globalManager.UpdateSystem(memoryBytes, goroutines) }

// RecordGCPause records a GC pause on the global manager.
func RecordGCPause(pauseMs float64) { globalManager.RecordGCPause(pauseMs) }

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// SeverityOf maps an outcome to the severity label used by RecordErrorByType.
func SeverityOf(outcome string) (string, error) {
	switch outcome {
	case OutcomeParseError, OutcomeNotFound, OutcomeDisabled:
		return "warning", nil
	case OutcomeUnavailable, OutcomeError:
		return "error", nil
	case OutcomeOK, OutcomeHelp:
		return "none", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, outcome)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
