// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_events_received_total",
			Help: "Total number of queue messages received, by event type",
		},
		[]string{"event_type"},
	)

	EventDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_event_decode_failures_total",
			Help: "Total number of queue messages that failed to decode",
		},
	)

	EventsUnknownType = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_events_unknown_type_total",
			Help: "Total number of events dropped for an unrecognized discriminant",
		},
	)

	NotificationsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_notifications_written_total",
			Help: "Total number of notification records written, by type",
		},
		[]string{"type"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_notifications_suppressed_total",
			Help: "Total number of events that produced no notification, by type and reason",
		},
		[]string{"type", "reason"},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notifier_handler_duration_seconds",
			Help: "Duration of event handling in seconds",
		},
		[]string{"event_type"},
	)

	HandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_handler_failures_total",
			Help: "Total number of handler runs that ended in a store error",
		},
		[]string{"event_type"},
	)
)
