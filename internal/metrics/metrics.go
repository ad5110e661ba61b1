// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devnovate"

var (
	// HTTPRequests counts requests by route, method and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
	}, []string{"route", "method"})

	// LikesToggled counts like toggles by direction
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "likes_toggled_total",
		Help:      "Like toggles by resulting state",
	}, []string{"state"})

	// CommentsPosted counts accepted comments
	CommentsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_posted_total",
		Help:      "Comments accepted",
	})

	// Transitions counts article lifecycle transitions
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "article_transitions_total",
		Help:      "Article lifecycle transitions by event and resulting status",
	}, []string{"event", "status"})

	// EventPublishFailures counts events that could not be delivered
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Domain events that failed to publish, by type",
	}, []string{"type"})

	// RateLimited counts rejected mutations
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Mutating requests rejected by the rate limiter",
	})
)
