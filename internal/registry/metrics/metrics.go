package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Every method is safe to call on a nil receiver.
type Metrics struct {
	ContentsCreated   prometheus.Counter
	RecordsMinted     prometheus.Counter
	RecordsUnlocked   prometheus.Counter
	OwnershipChanges  *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
}

// New registers the registry metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "keepsake_contents_created_total",
			Help: "Total number of contents created",
		}),
		RecordsMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "keepsake_records_minted_total",
			Help: "Total number of records minted",
		}),
		RecordsUnlocked: factory.NewCounter(prometheus.CounterOpts{
			Name: "keepsake_records_unlocked_total",
			Help: "Total number of records unlocked",
		}),
		OwnershipChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keepsake_ownership_changes_total",
			Help: "Committed ownership changes by initiator",
		}, []string{"initiator"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keepsake_operation_rejections_total",
			Help: "Failed registry operations by operation and error code",
		}, []string{"operation", "code"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keepsake_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keepsake_content_cache_lookups_total",
			Help: "Content cache lookups by tier and result",
		}, []string{"tier", "result"}),
	}
}

func (m *Metrics) IncrementContentCreated(minted int) {
	if m == nil {
		return
	}
	m.ContentsCreated.Inc()
	m.RecordsMinted.Add(float64(minted))
}

func (m *Metrics) IncrementUnlocked() {
	if m == nil {
		return
	}
	m.RecordsUnlocked.Inc()
}

func (m *Metrics) AddOwnershipChanges(initiator string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.OwnershipChanges.WithLabelValues(initiator).Add(float64(n))
}

func (m *Metrics) IncrementRejection(operation, code string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, code).Inc()
}

// ObserveOperation records the duration of an operation started at start.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveCacheLookup counts a hit or miss on tier ("local" or "redis").
func (m *Metrics) ObserveCacheLookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(tier, result).Inc()
}
