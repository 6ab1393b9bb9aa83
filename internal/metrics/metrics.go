package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "rental_billing_"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Billing mode label values.
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

var (
	registerOnce sync.Once

	commandsTotal   *prometheus.CounterVec
	commandLatency  *prometheus.HistogramVec
	invoicesCreated *prometheus.CounterVec
	queryLatency    *prometheus.HistogramVec
)

// Init registers the billing metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		commandsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total billing commands processed by type and result",
			},
			[]string{"type", "result"},
		)
		commandLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "command_latency_seconds",
				Help:    "Billing command processing latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type", "result"},
		)
		invoicesCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoices_created_total",
				Help: "Total invoices created by billing mode",
			},
			[]string{"mode"},
		)
		queryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "query_latency_seconds",
				Help:    "Read-side query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)

		prometheus.MustRegister(
			commandsTotal,
			commandLatency,
			invoicesCreated,
			queryLatency,
		)
	})
}

// ObserveCommand records one processed command.
func ObserveCommand(commandType, result string, d time.Duration) {
	if commandsTotal == nil {
		return
	}
	commandsTotal.WithLabelValues(commandType, result).Inc()
	commandLatency.WithLabelValues(commandType, result).Observe(d.Seconds())
}

// AddInvoicesCreated counts committed invoices.
func AddInvoicesCreated(mode string, n int) {
	if invoicesCreated == nil {
		return
	}
	invoicesCreated.WithLabelValues(mode).Add(float64(n))
}

// ObserveQuery records one read-side query.
func ObserveQuery(endpoint string, d time.Duration) {
	if queryLatency == nil {
		return
	}
	queryLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}
