package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	recordedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "outbox",
		Name:      "events_recorded_total",
		Help:      "Number of roster events accepted into the in-memory outbox.",
	})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "outbox",
		Name:      "events_dropped_total",
		Help:      "Number of roster events rejected because the outbox was full.",
	})

	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of roster events successfully published.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of roster events that failed to publish and were discarded.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "activities_service",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent delivering outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activities_service",
		Subsystem: "outbox",
		Name:      "pending_events",
		Help:      "Roster events waiting for delivery.",
	})
)

func init() {
	prometheus.MustRegister(recordedCounter, droppedCounter, deliveredCounter, failedCounter, batchDuration, pendingGauge)
}
