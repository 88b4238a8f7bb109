package translate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translateRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meld_translate_requests_total",
		Help: "Calls to the translation service by outcome",
	}, []string{"outcome"})

	translateCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meld_translate_cache_hits_total",
		Help: "Translations served from the in-process cache",
	})

	translateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meld_translate_duration_seconds",
		Help:    "Latency of calls to the translation service",
		Buckets: prometheus.DefBuckets,
	})
)
