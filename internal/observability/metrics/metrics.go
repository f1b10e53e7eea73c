package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "duesly_"

	resultSuccess = "success"
	resultError   = "error"
)

// Operation labels used by the reconciliation counters.
const (
	OpFullPayment    = "full_payment"
	OpPartialPayment = "partial_payment"
	OpReverse        = "reverse"
	OpUnmark         = "unmark"
	OpDeleteEntry    = "delete_entry"
	OpEnroll         = "enroll"
	OpPriceChange    = "price_change"
)

var (
	registerOnce sync.Once

	paymentOps     *prometheus.CounterVec
	paymentLatency *prometheus.HistogramVec

	viewLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec
)

// Init registers the service metrics with the default registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		paymentOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_operations_total",
				Help: "Reconciliation operations by op and result",
			},
			[]string{"op", "result"},
		)
		paymentLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_operation_seconds",
				Help:    "Reconciliation operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)
		viewLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "view_seconds",
				Help:    "Aggregation view recompute latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Report exports by kind and result",
			},
			[]string{"kind", "result"},
		)

		prometheus.MustRegister(paymentOps, paymentLatency, viewLatency, exportTotal)
	})
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObservePayment records one reconciliation operation.
func ObservePayment(op string, start time.Time, err error) {
	if paymentOps == nil {
		return
	}
	paymentOps.WithLabelValues(op, result(err)).Inc()
	paymentLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveView records one aggregation view recompute.
func ObserveView(view string, start time.Time) {
	if viewLatency == nil {
		return
	}
	viewLatency.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// ObserveExport records one report export.
func ObserveExport(kind string, err error) {
	if exportTotal == nil {
		return
	}
	exportTotal.WithLabelValues(kind, result(err)).Inc()
}
