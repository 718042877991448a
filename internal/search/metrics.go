package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperscout_searches_total",
		Help: "Search pipeline runs started.",
	})
	searchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperscout_search_failures_total",
		Help: "Searches that failed on the base-query retrieval.",
	})
	variantFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperscout_variant_failures_total",
		Help: "Expansion-variant retrievals that were skipped after an error.",
	})
	rerankFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperscout_rerank_fallbacks_total",
		Help: "Rerank calls that degraded to unscored passthrough.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperscout_search_duration_seconds",
		Help:    "End-to-end search pipeline latency.",
		Buckets: prometheus.DefBuckets,
	})
)
