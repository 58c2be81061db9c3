// Package metrics declares the Prometheus collectors of the API and the
// echo handler exposing them.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pronos_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pronos_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	TipsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pronos_tips_created_total",
		Help: "Tips published by administrators.",
	})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pronos_settlements_total",
		Help: "Manual settlements by recorded outcome.",
	}, []string{"outcome"})

	HeuristicVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pronos_heuristic_verdicts_total",
		Help: "Advisory verdicts produced by the keyword heuristic.",
	}, []string{"verdict"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pronos_webhook_events_total",
		Help: "Payment webhook events by type and handling result.",
	}, []string{"type", "result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pronos_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pronos_events_published_total",
		Help: "Domain events handed to the broker by type and result.",
	}, []string{"type", "result"})
)

// Handler exposes the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
