package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TaskRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_requests_total",
			Help: "Total number of task requests dispatched, by route and HTTP status",
		},
		[]string{"route", "status"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_validation_failures_total",
			Help: "Total number of request payloads rejected before handler invocation",
		},
		[]string{"route", "kind"},
	)

	TaskRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "task_request_duration_seconds",
			Help: "Duration of task dispatch in seconds, including validation and handler time",
		},
		[]string{"route"},
	)
)
