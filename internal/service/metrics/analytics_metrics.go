package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tascan",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of analysis endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tascan",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by analysis endpoint and error code",
		},
		[]string{"endpoint", "code"},
	)

	BatchSymbols = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tascan",
			Subsystem: "batch",
			Name:      "symbols",
			Help:      "Symbols per batch analysis request",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"source"},
	)

	SearchCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tascan",
			Subsystem: "search",
			Name:      "cache_total",
			Help:      "Symbol search cache lookups by result",
		},
		[]string{"result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, BatchSymbols, SearchCache)
	})
}
