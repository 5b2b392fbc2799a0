// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RecipeWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_recipe_writes_total",
		Help: "Committed recipe writes by operation.",
	}, []string{"op"})

	ShortLinkCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shortlink_collisions_total",
		Help: "Short link inserts retried because the code was taken.",
	})

	ShoppingListItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodgram_shopping_list_items",
		Help:    "Number of aggregated lines per generated shopping list.",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})
)
