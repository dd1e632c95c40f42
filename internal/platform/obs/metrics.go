package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CandidateEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_candidate_evaluations_total",
		Help: "Candidate departures evaluated, by search phase.",
	}, []string{"phase"})

	StoreQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_store_query_duration_seconds",
		Help:    "Latency of flight position store queries.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	StoreQueryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_store_query_errors_total",
		Help: "Flight position store queries that failed.",
	})

	OptimizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_run_duration_seconds",
		Help:    "Duration of departure time searches, by outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	AirportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_airport_cache_lookups_total",
		Help: "Airport cache lookups, by cache and result.",
	}, []string{"cache", "result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_http_requests_total",
		Help: "HTTP requests served, by method, path and status.",
	}, []string{"method", "path", "status"})
)
