// Package metrics exposes Prometheus collectors for HTTP traffic and feed activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intrafeed_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intrafeed_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	postsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intrafeed_posts_created_total",
		Help: "Posts created, by service and initial status.",
	}, []string{"service", "status"})

	moderationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intrafeed_moderation_decisions_total",
		Help: "Moderation actions taken by administrators.",
	}, []string{"action"})

	reactionsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intrafeed_reactions_toggled_total",
		Help: "Reaction toggles by kind and outcome (added or removed).",
	}, []string{"kind", "outcome"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intrafeed_notifications_total",
		Help: "Approval notification dispatches by result.",
	}, []string{"result"})

	tableCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "intrafeed_posts_by_status",
		Help: "Number of posts per moderation status.",
	}, []string{"status"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func PostCreated(service, status string) {
	postsCreated.WithLabelValues(service, status).Inc()
}

func ModerationDecision(action string) {
	moderationDecisions.WithLabelValues(action).Inc()
}

func ReactionToggled(kind string, added bool) {
	outcome := "removed"
	if added {
		outcome = "added"
	}
	reactionsToggled.WithLabelValues(kind, outcome).Inc()
}

func NotificationDispatched(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notifications.WithLabelValues(result).Inc()
}
