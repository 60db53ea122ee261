package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hrdesk_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ValidationFailures counts rejected fields by field name.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_validation_failures_total",
		Help: "Total number of fields rejected by validation",
	}, []string{"field"})

	// ProfileValueWrites counts profile value mutations by operation.
	ProfileValueWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_profile_value_writes_total",
		Help: "Total number of profile value writes by operation",
	}, []string{"operation"})

	// AttachmentsStored counts stored uploads by storage driver.
	AttachmentsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_attachments_stored_total",
		Help: "Total number of uploaded files stored",
	}, []string{"driver"})

	// CatalogCacheLookups counts catalog cache lookups by result (hit, miss).
	CatalogCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_catalog_cache_lookups_total",
		Help: "Total number of profile catalog cache lookups",
	}, []string{"result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordViolations increments the failure counter once per rejected field.
func RecordViolations(fields []string) {
	for _, f := range fields {
		ValidationFailures.WithLabelValues(f).Inc()
	}
}
