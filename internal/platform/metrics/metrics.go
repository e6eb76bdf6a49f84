package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics shared by every plugin service.
// All methods are safe on a nil receiver so services can run without metrics.
type Metrics struct {
	// Committed operations by plugin and operation name
	Updates *prometheus.CounterVec

	// Rejected operations by plugin and stable error reason
	Failures *prometheus.CounterVec

	// Duplicate-use rejections (receipt, asset or record already counted)
	DuplicateRejections *prometheus.CounterVec

	OperationDuration *prometheus.HistogramVec

	// Receipts, assets or token accounts that contributed weight
	AssetsCounted *prometheus.CounterVec

	// Weight events by publish result
	EventsPublished *prometheus.CounterVec
}

// New registers all metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Updates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterweight_updates_total",
			Help: "Total committed plugin operations by plugin and operation",
		}, []string{"plugin", "operation"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterweight_update_failures_total",
			Help: "Total rejected plugin operations by plugin and reason",
		}, []string{"plugin", "reason"}),

		DuplicateRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterweight_duplicate_rejections_total",
			Help: "Total operations rejected because an asset was already counted",
		}, []string{"plugin"}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voterweight_update_duration_seconds",
			Help:    "Duration of plugin operations including the ledger commit",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"plugin"}),

		AssetsCounted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterweight_assets_counted_total",
			Help: "Total receipts, assets and token accounts that contributed weight",
		}, []string{"plugin"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterweight_events_published_total",
			Help: "Total weight events by publish result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementUpdate(plugin, operation string) {
	if m != nil {
		m.Updates.WithLabelValues(plugin, operation).Inc()
	}
}

func (m *Metrics) IncrementFailure(plugin, reason string) {
	if m != nil {
		m.Failures.WithLabelValues(plugin, reason).Inc()
	}
}

func (m *Metrics) IncrementDuplicateRejection(plugin string) {
	if m != nil {
		m.DuplicateRejections.WithLabelValues(plugin).Inc()
	}
}

// ObserveOperation records the duration of one plugin operation.
func (m *Metrics) ObserveOperation(plugin string, d time.Duration) {
	if m != nil {
		m.OperationDuration.WithLabelValues(plugin).Observe(d.Seconds())
	}
}

func (m *Metrics) AddAssetsCounted(plugin string, n int) {
	if m != nil && n > 0 {
		m.AssetsCounted.WithLabelValues(plugin).Add(float64(n))
	}
}

// IncrementEventsPublished records a publish outcome: "ok", "failed" or "dropped".
func (m *Metrics) IncrementEventsPublished(result string) {
	if m != nil {
		m.EventsPublished.WithLabelValues(result).Inc()
	}
}
