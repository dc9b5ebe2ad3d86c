// Package metrics exposes Prometheus instrumentation for the report
// pipeline: collaborator call counts and latency plus persisted reports.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LLMCalls counts extraction/summarization calls by outcome.
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medlens_llm_calls_total",
		Help: "LLM collaborator calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// LLMDuration tracks collaborator call latency.
	LLMDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medlens_llm_call_duration_seconds",
		Help:    "LLM collaborator call duration.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"operation"})

	// ReportsPersisted counts reports appended to the store.
	ReportsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medlens_reports_persisted_total",
		Help: "Reports appended to the report store.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
