package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type importMetrics struct {
	importsTotal  *prometheus.CounterVec
	rowsTotal     *prometheus.CounterVec
	partsTotal    *prometheus.CounterVec
	createdTotal  *prometheus.CounterVec
	chunksTotal   prometheus.Counter
	importLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *importMetrics {
	return &importMetrics{
		importsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Total number of catalog imports broken down by result.",
		}, []string{"result"}),
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of import rows broken down by outcome.",
		}, []string{"outcome"}),
		partsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "import",
			Name:      "parts_total",
			Help:      "Total number of parts written by imports broken down by operation.",
		}, []string{"op"}),
		createdTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "import",
			Name:      "taxonomy_created_total",
			Help:      "Total number of categories and subcategories created by imports.",
		}, []string{"level"}),
		chunksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "import",
			Name:      "chunks_committed_total",
			Help:      "Total number of committed part chunks.",
		}),
		importLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Latency distribution for catalog imports.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"result"}),
	}
})

func getMetrics() *importMetrics {
	return metricsSingleton()
}

// ObserveImport records a finished import. It is subscribed to ImportFinishedEvent.
func ObserveImport(e *ImportFinishedEvent) {
	m := getMetrics()
	result := "ok"
	if !e.Succeeded() {
		result = "error"
	}
	m.importsTotal.WithLabelValues(result).Inc()
	summary := e.Summary
	if summary == nil {
		return
	}
	m.importLatency.WithLabelValues(result).Observe(summary.Duration.Seconds())
	m.rowsTotal.WithLabelValues("accepted").Add(float64(summary.Rows - summary.Skipped))
	m.rowsTotal.WithLabelValues("skipped").Add(float64(summary.Skipped))
	m.partsTotal.WithLabelValues("create").Add(float64(summary.PartsCreated))
	m.partsTotal.WithLabelValues("update").Add(float64(summary.PartsUpdated))
	m.createdTotal.WithLabelValues("category").Add(float64(summary.CategoriesCreated))
	m.createdTotal.WithLabelValues("subcategory").Add(float64(summary.SubCategoriesCreated))
}

func recordChunk() {
	getMetrics().chunksTotal.Inc()
}
