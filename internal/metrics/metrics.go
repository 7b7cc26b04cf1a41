// Package metrics exposes run results as Prometheus metrics. A run is a
// short-lived batch job, so metrics are written once to a file for the
// node-exporter textfile collector instead of being scraped.
//
// Metrics:
//   - leapdq_expectations_total: executed expectations by rule, severity and status
//   - leapdq_run_duration_seconds: duration of complete runs by result
//   - leapdq_last_run_timestamp_seconds: unix time the last run finished
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leapstack-labs/leapdq/internal/dispatch"
)

const namespace = "leapdq"

// Run results.
const (
	RunSucceeded = "success"
	RunFailed    = "failure"
)

// Recorder collects run metrics in its own registry. It implements
// dispatch.Reporter so it can be chained next to the log reporter.
type Recorder struct {
	registry *prometheus.Registry

	expectationsTotal *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	lastRun           prometheus.Gauge
}

// NewRecorder creates a recorder and registers its metrics. A nil registry
// creates a private one.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: registry,
		expectationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expectations_total",
				Help:      "Total number of executed expectations",
			},
			[]string{"rule", "severity", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of rule-set runs in seconds",
				// runs range from a few queries to warehouse-wide scans
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"result"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
	}

	registry.MustRegister(r.expectationsTotal, r.runDuration, r.lastRun)
	return r
}

// Registry returns the registry the metrics are registered in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Report implements dispatch.Reporter.
func (r *Recorder) Report(_ context.Context, res dispatch.Result) {
	r.expectationsTotal.WithLabelValues(res.Rule, res.Severity.String(), res.Action.String()).Inc()
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(duration time.Duration, err error) {
	result := RunSucceeded
	if err != nil {
		result = RunFailed
	}
	r.runDuration.WithLabelValues(result).Observe(duration.Seconds())
	r.lastRun.SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
