package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campus_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SheetsProvisioned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_attendance_sheets_provisioned_total",
		Help: "Empty attendance sheets created by timetable updates.",
	})

	ApprovalDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_approval_decisions_total",
		Help: "Processed approval requests by kind and outcome.",
	}, []string{"kind", "outcome"})

	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_stats_cache_total",
		Help: "Dashboard statistics cache lookups by result.",
	}, []string{"result"})
)
