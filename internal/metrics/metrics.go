package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ModelLoaded is 1 while a classifier is available for /predict.
	ModelLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "naildx",
		Subsystem: "model",
		Name:      "loaded",
		Help:      "Whether a classifier was loaded at startup.",
	})

	// PredictTotal counts /predict requests by outcome ("ok" or an error kind).
	PredictTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "naildx",
		Subsystem: "predict",
		Name:      "requests_total",
		Help:      "Total number of prediction requests, labeled by result.",
	}, []string{"result"})

	// InferenceDurationSeconds is time spent inside the classifier.
	InferenceDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "naildx",
		Subsystem: "predict",
		Name:      "inference_duration_seconds",
		Help:      "Time spent running the classifier for one image.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "naildx",
		Subsystem: "predict",
		Name:      "cache_hits_total",
		Help:      "Total number of predictions answered from the result cache.",
	})
)

// Register registers the collectors with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ModelLoaded,
			PredictTotal,
			InferenceDurationSeconds,
			CacheHitsTotal,
		)
	})
}
