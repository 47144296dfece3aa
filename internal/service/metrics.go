package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "pipeline",
		Name:      "commands_total",
		Help:      "Processed commands by kind and outcome.",
	}, []string{"kind", "status", "reason"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "order_lifecycle",
		Subsystem: "pipeline",
		Name:      "command_duration_seconds",
		Help:      "Time spent processing a command.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	commandsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "order_lifecycle",
		Subsystem: "pipeline",
		Name:      "commands_in_flight",
		Help:      "Commands currently being processed.",
	})

	conflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "pipeline",
		Name:      "conflict_retries_total",
		Help:      "Pipeline restarts caused by version conflicts.",
	})

	replayedOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "pipeline",
		Name:      "replayed_outcomes_total",
		Help:      "Outcomes served for already processed command ids.",
	}, []string{"source"})

	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "publisher",
		Name:      "events_published_total",
		Help:      "Events written to the event topic.",
	})

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "publisher",
		Name:      "publish_failures_total",
		Help:      "Events left for the reconciler after retries ran out.",
	})

	heldEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "publisher",
		Name:      "held_events_total",
		Help:      "Events queued behind an earlier unpublished event of the same order.",
	})

	reconciledEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "reconciler",
		Name:      "events_total",
		Help:      "Events picked up by the reconciler by result.",
	}, []string{"result"})

	projectionUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "projector",
		Name:      "events_total",
		Help:      "Events seen by the projector, applied or skipped as duplicates.",
	}, []string{"result"})

	projectionRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "projector",
		Name:      "rebuilds_total",
		Help:      "Projections rebuilt from the event log.",
	})
)
