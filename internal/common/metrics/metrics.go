package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method", "route"},
	)

	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_applications_submitted_total",
			Help: "Total number of onboarding applications submitted",
		},
	)

	ApplicationStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_status_transitions_total",
			Help: "Total number of application status transitions",
		},
		[]string{"from", "to"},
	)

	EvaluationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_evaluations_completed_total",
			Help: "Total number of evaluations completed",
		},
		[]string{"type", "recommendation"},
	)

	ContractsActivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_contracts_activated_total",
			Help: "Total number of contracts fully signed and activated",
		},
	)

	DocumentsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_documents_uploaded_total",
			Help: "Total number of documents uploaded",
		},
		[]string{"type"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_notifications_sent_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"channel", "status"},
	)
)
