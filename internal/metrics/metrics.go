// Package metrics holds the Prometheus collectors for the ledger and the
// alert dispatcher.
//
// All recording methods are safe on a nil *Metrics, so components can run
// without metrics wired in (tests, one-shot CLI commands).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "craftledger"

// Operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Alert delivery outcomes.
const (
	AlertDelivered = "delivered"
	AlertFailed    = "failed"
	AlertDropped   = "dropped"
	AlertThrottled = "throttled"
)

// Metrics is the set of collectors registered for one process.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	crafted    *prometheus.CounterVec
	sales      *prometheus.CounterVec
	alerts     *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests so runs don't collide on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by name and outcome",
		}, []string{"op", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency including the store transaction",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"op"}),
		crafted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "crafted_units_total",
			Help:      "Units produced by successful crafts",
		}, []string{"product"}),
		sales: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "sales_amount_total",
			Help:      "Sales amount credited by successful sells",
		}, []string{"product"}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Low-stock alerts by delivery outcome",
		}, []string{"outcome"}),
	}
}

// ObserveOperation records one ledger operation.
func (m *Metrics) ObserveOperation(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

// AddCrafted records units produced for a product.
func (m *Metrics) AddCrafted(product string, units int64) {
	if m == nil {
		return
	}
	m.crafted.WithLabelValues(product).Add(float64(units))
}

// AddSales records an amount credited for a product.
func (m *Metrics) AddSales(product string, amount int64) {
	if m == nil {
		return
	}
	m.sales.WithLabelValues(product).Add(float64(amount))
}

// ObserveAlert records one alert outcome.
func (m *Metrics) ObserveAlert(outcome string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(outcome).Inc()
}

// OperationCounter exposes one operations_total series for assertions.
func (m *Metrics) OperationCounter(op, outcome string) (prometheus.Counter, error) {
	return m.operations.GetMetricWithLabelValues(op, outcome)
}

// AlertCounter exposes one alerts_total series for assertions.
func (m *Metrics) AlertCounter(outcome string) (prometheus.Counter, error) {
	return m.alerts.GetMetricWithLabelValues(outcome)
}
