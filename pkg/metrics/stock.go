package metrics

import (
	"time"

	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics records ledger and lifecycle operation outcomes.
type StockMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	movements *prometheus.CounterVec
}

// NewStockMetrics registers the stock metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_operation_duration_seconds",
		Help:    "Duration of stock-mutating operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_operation_success_total",
		Help: "Successful stock-mutating operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_operation_failure_total",
		Help: "Failed stock-mutating operations by error code.",
	}, []string{"operation", "code"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_stock_units_moved_total",
		Help: "Units moved through the stock ledger by reason and direction.",
	}, []string{"reason", "direction"})
	reg.MustRegister(duration, success, failure, movements)
	return &StockMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		movements: movements,
	}
}

// Observe records the duration and outcome of an operation. code is empty on success.
func (m *StockMetrics) Observe(operation string, elapsed time.Duration, code string) {
	if m == nil || m.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if code == "" {
		m.success.WithLabelValues(op).Inc()
		return
	}
	m.failure.WithLabelValues(op, code).Inc()
}

// Track observes an operation that started at start and finished with err.
// Untyped errors are counted as INTERNAL_ERROR.
func (m *StockMetrics) Track(operation string, start time.Time, err error) {
	code := ""
	if err != nil {
		code = string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
	}
	m.Observe(operation, time.Since(start), code)
}

// AddMovement counts units moved in or out of stock.
func (m *StockMetrics) AddMovement(reason string, delta int) {
	if m == nil || m.movements == nil || delta == 0 {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
		delta = -delta
	}
	m.movements.WithLabelValues(normalizeLabel(reason), direction).Add(float64(delta))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
