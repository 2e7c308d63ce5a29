package internal

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors of the idea pipeline
type Metrics struct {
	PersistenceTasksTotal *prometheus.CounterVec
	StreamFramesTotal     *prometheus.CounterVec
	IdeasExtractedTotal   *prometheus.CounterVec
	DeepDivesTotal        *prometheus.CounterVec
}

// GetMetrics returns the process-wide metrics, registering them on first use
//
// Metrics:
//   - ideasurge_persistence_tasks_total{op,result}
//   - ideasurge_stream_frames_total{kind}
//   - ideasurge_ideas_extracted_total{dialect}
//   - ideasurge_deep_dives_total{result}
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			PersistenceTasksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ideasurge_persistence_tasks_total",
					Help: "Fire-and-forget pick/recycle tasks by outcome",
				},
				[]string{"op", "result"},
			),
			StreamFramesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ideasurge_stream_frames_total",
					Help: "Decoded stream frames by kind",
				},
				[]string{"kind"},
			),
			IdeasExtractedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ideasurge_ideas_extracted_total",
					Help: "Ideas kept at the end of a search, by dialect",
				},
				[]string{"dialect"},
			),
			DeepDivesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ideasurge_deep_dives_total",
					Help: "Deep-dive parses by outcome",
				},
				[]string{"result"},
			),
		}
	})
	return globalMetrics
}
