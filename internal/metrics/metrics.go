// Package metrics records run metrics for a report run and pushes them to a
// Prometheus Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Chart statuses.
const (
	StatusRendered = "rendered"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Recorder is what the report service needs from a metrics backend.
type Recorder interface {
	RecordRows(loaded, skipped int)
	RecordChart(report, status string)
	RecordPublish(report string, err error)
	ObserveRunDuration(d time.Duration)
	RecordDateMemo(hits, misses uint64)
}

type RunMetrics struct {
	registry       *prometheus.Registry
	rowsLoaded     prometheus.Gauge
	rowsSkipped    prometheus.Gauge
	chartsTotal    *prometheus.CounterVec
	publishTotal   *prometheus.CounterVec
	runDuration    prometheus.Gauge
	dateMemoHits   prometheus.Gauge
	dateMemoMisses prometheus.Gauge
}

func NewRunMetrics() *RunMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &RunMetrics{
		registry: reg,
		rowsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "salesplot_rows_loaded",
				Help: "Number of transactions loaded by the last run",
			},
		),
		rowsSkipped: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "salesplot_rows_skipped",
				Help: "Number of transactions dropped for an unparseable date",
			},
		),
		chartsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salesplot_charts_total",
				Help: "Charts handled by report and status",
			},
			[]string{"report", "status"},
		),
		publishTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salesplot_notifications_total",
				Help: "Report rendered notifications by report and status",
			},
			[]string{"report", "status"},
		),
		runDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "salesplot_run_duration_seconds",
				Help: "Wall time of the last report run in seconds",
			},
		),
		dateMemoHits: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "salesplot_date_memo_hits",
				Help: "Date parse memo hits during the last run",
			},
		),
		dateMemoMisses: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "salesplot_date_memo_misses",
				Help: "Date parse memo misses during the last run",
			},
		),
	}
}

func (m *RunMetrics) RecordRows(loaded, skipped int) {
	m.rowsLoaded.Set(float64(loaded))
	m.rowsSkipped.Set(float64(skipped))
}

func (m *RunMetrics) RecordChart(report, status string) {
	m.chartsTotal.WithLabelValues(report, status).Inc()
}

func (m *RunMetrics) RecordPublish(report string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.publishTotal.WithLabelValues(report, status).Inc()
}

func (m *RunMetrics) ObserveRunDuration(d time.Duration) {
	m.runDuration.Set(d.Seconds())
}

func (m *RunMetrics) RecordDateMemo(hits, misses uint64) {
	m.dateMemoHits.Set(float64(hits))
	m.dateMemoMisses.Set(float64(misses))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends every collected metric to the gateway, replacing the job's
// previous group.
func (m *RunMetrics) Push(ctx context.Context, gatewayURL, job, runID string) error {
	pusher := push.New(gatewayURL, job).
		Gatherer(m.registry).
		Grouping("instance", "salesreport")
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordRows(int, int)              {}
func (Noop) RecordChart(string, string)       {}
func (Noop) RecordPublish(string, error)      {}
func (Noop) ObserveRunDuration(time.Duration) {}
func (Noop) RecordDateMemo(uint64, uint64)    {}
