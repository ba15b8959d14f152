package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects stage timings and run outcomes in a private registry.
// A CLI process lives for one run, so the registry is written to a textfile
// (node_exporter textfile collector format) instead of being scraped.
type Metrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	stages      *prometheus.HistogramVec
	conversions *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vocal",
			Name:      "runs_total",
			Help:      "Pipeline runs by operation and outcome.",
		}, []string{"operation", "outcome"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vocal",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage", "result"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vocal",
			Name:      "audio_conversions_total",
			Help:      "Audio files by conversion result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.runs, m.stages, m.conversions)
	return m
}

func (m *Metrics) observeStage(stage State, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stages.WithLabelValues(stage.String(), result).Observe(took.Seconds())
}

func (m *Metrics) observeRun(r *RunReport) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(r.Operation), string(r.Outcome)).Inc()
	m.conversions.WithLabelValues("converted").Add(float64(len(r.Conversions)))
	m.conversions.WithLabelValues("failed").Add(float64(len(r.ConversionFailures)))
	m.conversions.WithLabelValues("skipped").Add(float64(len(r.Skipped)))
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
