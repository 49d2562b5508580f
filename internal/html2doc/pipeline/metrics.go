package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	conversions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "html2doc",
		Name:      "conversions_total",
		Help:      "Total count of conversions by result",
	}, []string{"result"})

	stageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "html2doc",
		Name:      "stage_errors_total",
		Help:      "Conversion errors by pipeline stage",
	}, []string{"stage"})

	inputBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "html2doc",
		Name:      "input_bytes_total",
		Help:      "Total size of converted markup",
	})

	convertedNodes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "html2doc",
		Name:      "converted_nodes",
		Help:      "Node count of converted documents",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
)

// Collectors метрики пайплайна для регистрации на сервере метрик
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{conversions, stageErrors, inputBytes, convertedNodes}
}
