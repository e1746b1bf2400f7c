package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics holds all Prometheus metrics for the record service.
type Metrics struct {
	RecordsSaved     prometheus.Counter
	Lookups          *prometheus.CounterVec
	LinesSkipped     prometheus.Counter
	StoredRecords    prometheus.Gauge
	PersistDuration  prometheus.Histogram
	LoadDuration     prometheus.Histogram
	RequestDurations *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_records_saved_total",
			Help: "Total number of successful record saves",
		}),
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_record_lookups_total",
			Help: "Record lookups by identifier, partitioned by result",
		}, []string{"result"}),
		LinesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_file_lines_skipped_total",
			Help: "Malformed lines skipped while loading the records file",
		}),
		StoredRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "registrar_records_stored",
			Help: "Number of records currently held in memory",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_file_persist_duration_seconds",
			Help:    "Duration of full records file rewrites",
			Buckets: durationBuckets,
		}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_file_load_duration_seconds",
			Help:    "Duration of full records file loads",
			Buckets: durationBuckets,
		}),
		RequestDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: durationBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementRecordsSaved records a successful save.
func (m *Metrics) IncrementRecordsSaved() {
	m.RecordsSaved.Inc()
}

// IncrementLookup records a lookup outcome.
func (m *Metrics) IncrementLookup(found bool) {
	result := "not_found"
	if found {
		result = "found"
	}
	m.Lookups.WithLabelValues(result).Inc()
}

// AddLinesSkipped records malformed lines dropped during a load.
func (m *Metrics) AddLinesSkipped(n int) {
	m.LinesSkipped.Add(float64(n))
}

// SetStoredRecords reports the in-memory record count.
func (m *Metrics) SetStoredRecords(n int) {
	m.StoredRecords.Set(float64(n))
}

// ObservePersist records the duration of a file rewrite.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePersist(start time.Time) {
	m.PersistDuration.Observe(time.Since(start).Seconds())
}

// ObserveLoad records the duration of a file load.
func (m *Metrics) ObserveLoad(start time.Time) {
	m.LoadDuration.Observe(time.Since(start).Seconds())
}

// ObserveRequest records HTTP latency for a routed request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDurations.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
