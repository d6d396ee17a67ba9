package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodscout_scrape_requests_total",
			Help: "Total number of scrape requests by data source and outcome",
		},
		[]string{"source", "outcome"},
	)

	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prodscout_fallbacks_total",
			Help: "Total number of times the sample data fallback was used",
		},
	)

	PollAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prodscout_poll_attempts_total",
			Help: "Total number of snapshot status queries issued",
		},
	)

	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prodscout_scrape_duration_seconds",
			Help:    "End-to-end duration of scrape invocations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	ProductsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prodscout_products_returned",
			Help:    "Number of products returned per completed scrape",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)
)

// RecordScrape updates the per-request counters for one completed invocation.
func RecordScrape(source, outcome string, productCount int, durationSeconds float64) {
	ScrapeRequestsTotal.WithLabelValues(source, outcome).Inc()
	ScrapeDuration.Observe(durationSeconds)
	if outcome == "success" {
		ProductsReturned.Observe(float64(productCount))
	}
}
