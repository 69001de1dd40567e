// Package metrics defines the Prometheus collectors of the driver.
//
// Collectors are registered with controller-runtime's registry so a single
// /metrics endpoint serves them alongside client-go metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const namespace = "magnum_capi"

// Result label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// Lifecycle operation metrics
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "operations_total",
			Help:      "Total number of driver lifecycle operations by result",
		},
		[]string{"operation", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "operation_duration_seconds",
			Help:      "Duration of driver lifecycle operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"operation"},
	)

	// Management cluster API metrics
	applierRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applier",
			Name:      "requests_total",
			Help:      "Total number of management cluster API requests by verb, kind and result",
		},
		[]string{"verb", "kind", "result"},
	)

	statusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cluster",
			Name:      "status_transitions_total",
			Help:      "Total number of cluster and node group status transitions",
		},
		[]string{"from", "to"},
	)

	// Identity API metrics
	credentialRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credentials",
			Name:      "requests_total",
			Help:      "Total number of identity API requests by operation and result",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	ctrlmetrics.Registry.MustRegister(
		operationsTotal,
		operationDuration,
		applierRequestsTotal,
		statusTransitionsTotal,
		credentialRequestsTotal,
	)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// RecordOperation records a driver lifecycle operation.
func RecordOperation(operation string, err error, duration time.Duration) {
	operationsTotal.WithLabelValues(operation, result(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordApplierRequest records a management cluster API request.
func RecordApplierRequest(verb, kind string, err error) {
	applierRequestsTotal.WithLabelValues(verb, kind, result(err)).Inc()
}

// RecordStatusTransition records a status change.
func RecordStatusTransition(from, to string) {
	if from == to {
		return
	}
	statusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordCredentialRequest records an identity API request.
func RecordCredentialRequest(operation string, err error) {
	credentialRequestsTotal.WithLabelValues(operation, result(err)).Inc()
}
