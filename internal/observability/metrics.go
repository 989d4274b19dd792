package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// wso-api metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wso_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wso_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wso_active_requests",
		Help: "Current in-flight requests",
	})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wso_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	// lifecycle metrics
	LifecycleOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wso_lifecycle_ops_total",
		Help: "Lifecycle operation count",
	}, []string{"action", "outcome"})

	LifecycleOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wso_lifecycle_op_duration_seconds",
		Help:    "Lifecycle operation end-to-end duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"action"})

	CreationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wso_creation_runs_total",
		Help: "Creation pipeline run count by terminal status",
	}, []string{"status"})

	CreationStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wso_creation_step_duration_seconds",
		Help:    "Creation pipeline per-step duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"step"})

	BulkTargetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wso_bulk_targets_total",
		Help: "Bulk action per-target outcome count",
	}, []string{"action", "outcome"})

	// schedule engine metrics
	ScheduleFiresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wso_schedule_fires_total",
		Help: "Schedule fire count",
	}, []string{"action", "outcome"})

	ScheduleTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wso_schedule_tick_duration_seconds",
		Help:    "Schedule evaluation tick duration",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
	})

	// feed metrics
	FeedSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wso_feed_subscribers",
		Help: "Currently attached creation feed subscribers",
	})
)

func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, ActiveRequests, RateLimitedTotal,
		LifecycleOpsTotal, LifecycleOpDuration, CreationRunsTotal, CreationStepDuration,
		BulkTargetsTotal, ScheduleFiresTotal, ScheduleTickDuration, FeedSubscribers,
	)
}
