package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	analysisStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuscore_analysis_started_total",
			Help: "Total analyses started by tier",
		},
		[]string{"tier"},
	)

	analysisCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuscore_analysis_completed_total",
			Help: "Total analyses completed by tier and verdict",
		},
		[]string{"tier", "status"},
	)

	analysisFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuscore_analysis_failed_total",
			Help: "Total analyses failed by tier",
		},
		[]string{"tier"},
	)

	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docuscore_analysis_duration_ms",
			Help:    "Analysis duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2000, 5000},
		},
		[]string{"tier"},
	)

	analysisScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docuscore_analysis_score",
			Help:    "Distribution of final scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120},
		},
		[]string{"tier"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuscore_exports_total",
			Help: "Total reports exported by format",
		},
		[]string{"format"},
	)

	httpPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuscore_http_panics_total",
			Help: "Handler panics recovered by route",
		},
		[]string{"route"},
	)

	connectivityOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docuscore_connectivity_online",
			Help: "1 when the last connectivity check reported online",
		},
	)
)

func init() {
	registry.MustRegister(
		analysisStartedTotal,
		analysisCompletedTotal,
		analysisFailedTotal,
		analysisDuration,
		analysisScore,
		exportsTotal,
		httpPanicsTotal,
		connectivityOnline,
	)
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted(tier string) {
	analysisStartedTotal.WithLabelValues(tier).Inc()
}

// IncAnalysisCompleted records a completed analysis and its score.
func IncAnalysisCompleted(tier, status string, score int) {
	analysisCompletedTotal.WithLabelValues(tier, status).Inc()
	analysisScore.WithLabelValues(tier).Observe(float64(score))
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed(tier string) {
	analysisFailedTotal.WithLabelValues(tier).Inc()
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(tier string, value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.WithLabelValues(tier).Observe(value)
}

// IncExport counts an exported report.
func IncExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

// IncPanic counts a recovered handler panic.
func IncPanic(route string) {
	if route == "" {
		route = "unmatched"
	}
	httpPanicsTotal.WithLabelValues(route).Inc()
}

// SetOnline records the latest connectivity reading.
func SetOnline(online bool) {
	if online {
		connectivityOnline.Set(1)
		return
	}
	connectivityOnline.Set(0)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Registry exposes the collector registry for tests and embedding.
func Registry() *prometheus.Registry {
	return registry
}
