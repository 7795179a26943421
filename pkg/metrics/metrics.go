package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Record store metrics
	StorePagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcade_store_pages_fetched_total",
		Help: "The total number of pages fetched from the record store, per collection",
	}, []string{"collection"})
	StoreFetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcade_store_fetch_errors_total",
		Help: "The total number of failed page requests to the record store, per collection",
	}, []string{"collection"})
	StoreFilterFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcade_store_filter_fallbacks_total",
		Help: "The total number of times a filter strategy came back empty and the next one was tried",
	}, []string{"collection", "strategy"})

	// Profile enrichment metrics
	ProfileLookupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcade_profile_lookups_total",
		Help: "The total number of outbound calls to the profile directory",
	})
	ProfileLookupErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcade_profile_lookup_errors_total",
		Help: "The total number of failed profile directory lookups",
	})
	ProfileCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcade_profile_cache_hits_total",
		Help: "The total number of profile lookups served from the cache",
	})
	ProfileCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcade_profile_cache_misses_total",
		Help: "The total number of profile lookups that missed the cache",
	})

	// Pipeline metrics
	AggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcade_aggregations_total",
		Help: "The total number of aggregation pipeline invocations, per projection",
	}, []string{"projection"})
	AggregationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcade_aggregation_errors_total",
		Help: "The total number of aggregation pipeline invocations that failed",
	})
	AggregationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arcade_aggregation_latency_seconds",
		Help:    "Latency of full aggregation pipeline invocations",
		Buckets: prometheus.DefBuckets,
	})
)
