// Package metrics exposes Prometheus collectors for the HTTP layer and the
// tag discovery engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by chi route pattern, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// TagSearchTotal counts tag searches by sort mode and outcome
	// (ok, not_found, invalid, error).
	TagSearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tag_search_total",
			Help: "Total number of tag intersection searches",
		},
		[]string{"sort", "outcome"},
	)

	// TagSearchResults observes the total number of matches per search.
	TagSearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tag_search_results",
			Help:    "Number of novels matching a tag search",
			Buckets: []float64{0, 1, 5, 10, 24, 50, 100, 500, 1000, 5000},
		},
	)

	// RelatedTagsTotal counts related-tag lookups by execution path.
	RelatedTagsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "related_tags_total",
			Help: "Total number of related tag computations",
		},
		[]string{"path"},
	)

	// HotScoreRefreshedTotal counts hot score rows rewritten.
	HotScoreRefreshedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hot_score_refreshed_total",
			Help: "Total number of novels whose cached hot score was rewritten",
		},
	)
)

func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func RecordTagSearch(sort, outcome string, total int64) {
	TagSearchTotal.WithLabelValues(sort, outcome).Inc()
	if outcome == "ok" {
		TagSearchResults.Observe(float64(total))
	}
}

func RecordRelatedTags(path string) {
	RelatedTagsTotal.WithLabelValues(path).Inc()
}

func RecordHotScoreRefreshed(n int) {
	HotScoreRefreshedTotal.Add(float64(n))
}
