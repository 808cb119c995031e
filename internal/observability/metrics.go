package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	signupOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "registry",
		Name:      "operations_total",
		Help:      "Registry operations by operation and outcome (ok or error kind).",
	}, []string{"operation", "outcome"})
	rosterSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "activities_service",
		Subsystem: "registry",
		Name:      "roster_size",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activities_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(signupOperations, rosterSize, requestDuration)
}

// Operation names used as the "operation" label.
const (
	OperationSignup     = "signup"
	OperationUnregister = "unregister"
)

// OutcomeOK labels a successful operation.
const OutcomeOK = "ok"

// RecordOperation counts a registry operation outcome.
func RecordOperation(operation, outcome string) {
	signupOperations.WithLabelValues(operation, outcome).Inc()
}

// SetRosterSize updates the roster gauge of an activity.
func SetRosterSize(activity string, size int) {
	rosterSize.WithLabelValues(activity).Set(float64(size))
}

// ObserveRequest records the latency of a served HTTP request.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
