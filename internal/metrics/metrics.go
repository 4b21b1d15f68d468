package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GeocodeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatefuture_geocode_calls_total",
			Help: "Total Open-Meteo geocoding API calls",
		},
		[]string{"status"},
	)

	ClimateAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatefuture_climate_api_calls_total",
			Help: "Total Open-Meteo climate API calls",
		},
		[]string{"status"},
	)

	ClimateAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "climatefuture_climate_api_latency_seconds",
			Help:    "Climate API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ClimateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "climatefuture_climate_cache_hits_total",
			Help: "Climate API responses served from the local cache",
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatefuture_analyses_total",
			Help: "Total analysis requests by outcome",
		},
		[]string{"outcome"},
	)

	NarrativesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatefuture_narratives_generated_total",
			Help: "Total narrative generation calls",
		},
		[]string{"status"},
	)
)
