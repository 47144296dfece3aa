package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	messagesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "messages_processed_total",
			Help:      "Total number of successfully handled messages",
		},
	)

	messagesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "messages_failed_total",
			Help:      "Total number of messages that could not be handled",
		},
	)

	messagesDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "messages_dlq_total",
			Help:      "Total number of messages written to DLQ",
		},
	)

	commitErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "commit_errors_total",
			Help:      "Total number of Kafka commit errors",
		},
	)

	processingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "message_processing_duration_seconds",
			Help:      "Histogram of message processing durations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	inProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "messages_in_progress",
			Help:      "Number of messages currently being handled",
		},
	)

	deferredRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_lifecycle",
			Subsystem: "kafka_consumer",
			Name:      "deferred_retries_total",
			Help:      "Total number of in-place retries of deferred commands",
		},
	)
)

var (
	commandRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "order_lifecycle",
			Subsystem: "http",
			Name:      "command_requests_total",
			Help:      "Total number of submitted commands by result",
		},
		[]string{"status"},
	)

	commandRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "order_lifecycle",
			Subsystem: "http",
			Name:      "command_request_duration_seconds",
			Help:      "Histogram of command processing durations for HTTP submissions",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		messagesProcessed,
		messagesFailed,
		messagesDLQ,
		commitErrors,
		processingDuration,
		inProgress,
		deferredRetries,

		commandRequests,
		commandRequestDuration,
	)
}
