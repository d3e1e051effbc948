package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram

	initOnce sync.Once
)

// Init registers the collectors with the default registry. Later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		)

		AnalysesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "html_analyzer_analyses_total",
				Help: "Total number of page analyses by outcome.",
			},
			[]string{"outcome"}, // "success" or a failure kind
		)

		AnalysisDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "html_analyzer_analysis_duration_seconds",
				Help:    "Duration of page analyses, including fetching.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)
	})
}

// ObserveAnalysis records one finished analysis, registering the collectors
// first if nothing has yet.
func ObserveAnalysis(outcome string, seconds float64) {
	Init()
	AnalysesTotal.WithLabelValues(outcome).Inc()
	AnalysisDuration.Observe(seconds)
}
