// Package metrics collects Prometheus counters for one pipeline run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stepcov"

// Metrics holds the pipeline collectors. Every method is safe on a nil *Metrics,
// so callers that do not want metrics pass nil.
type Metrics struct {
	Registry *prometheus.Registry

	FilesDiscovered  *prometheus.CounterVec
	FilesSkipped     *prometheus.CounterVec
	StepsEvaluated   *prometheus.CounterVec
	PatternFallbacks prometheus.Counter
	CoveragePercent  prometheus.Gauge
	StageDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.FilesDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_discovered_total",
			Help:      "Files discovered under the root, by kind",
		},
		[]string{"kind"},
	)

	m.FilesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Files skipped with a diagnostic, by diagnostic code",
		},
		[]string{"code"},
	)

	m.StepsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_evaluated_total",
			Help:      "Unique steps evaluated against the registry, by result",
		},
		[]string{"result"},
	)

	m.PatternFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_fallbacks_total",
			Help:      "Step definition patterns matched by substring fallback",
		},
	)

	m.CoveragePercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_percent",
			Help:      "Step coverage of the last run",
		},
	)

	m.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"stage"},
	)

	m.Registry.MustRegister(
		m.FilesDiscovered,
		m.FilesSkipped,
		m.StepsEvaluated,
		m.PatternFallbacks,
		m.CoveragePercent,
		m.StageDuration,
	)
	return m
}

func (m *Metrics) RecordDiscovered(kind string, n int) {
	if m == nil {
		return
	}
	m.FilesDiscovered.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) RecordSkipped(code string) {
	if m == nil {
		return
	}
	m.FilesSkipped.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordSteps(matched, missing int) {
	if m == nil {
		return
	}
	m.StepsEvaluated.WithLabelValues("matched").Add(float64(matched))
	m.StepsEvaluated.WithLabelValues("missing").Add(float64(missing))
}

func (m *Metrics) RecordFallbacks(n int) {
	if m == nil {
		return
	}
	m.PatternFallbacks.Add(float64(n))
}

func (m *Metrics) SetCoverage(percent int) {
	if m == nil {
		return
	}
	m.CoveragePercent.Set(float64(percent))
}

// ObserveStage records the time since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
