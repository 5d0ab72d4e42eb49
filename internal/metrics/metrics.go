// Package metrics exposes prometheus counters for dispatch cycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every tweetwatch collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	// Cycles counts dispatch cycles by outcome: success, fetch_error, error.
	Cycles = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "tweetwatch",
		Name:      "cycles_total",
		Help:      "Dispatch cycles by outcome.",
	}, []string{"outcome"})

	// Items counts items by pipeline stage: fetched, matched, pushed, push_failed.
	Items = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "tweetwatch",
		Name:      "items_total",
		Help:      "Items seen per pipeline stage.",
	}, []string{"stage"})

	// CycleDuration observes wall time of each cycle.
	CycleDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "tweetwatch",
		Name:      "cycle_duration_seconds",
		Help:      "Dispatch cycle duration.",
		Buckets:   prometheus.DefBuckets,
	})

	// LastSuccess is the unix time of the last successful cycle.
	LastSuccess = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "tweetwatch",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful dispatch cycle.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
