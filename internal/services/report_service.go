package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesplot/internal/amqp"
	"salesplot/internal/chart"
	"salesplot/internal/config"
	"salesplot/internal/core"
	"salesplot/internal/log"
	"salesplot/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ChartRenderer draws pivots to files and returns the written path.
type ChartRenderer interface {
	MonthlySales(ctx context.Context, pv core.Pivot) (string, error)
	ReceivedBy(ctx context.Context, pv core.Pivot) (string, error)
	TransactionTypes(ctx context.Context, pv core.Pivot) (string, error)
	Format() string
}

// ReportPublisher announces rendered charts.
type ReportPublisher interface {
	PublishReportRendered(ctx context.Context, msg *amqp.ReportRenderedMessage) error
}

// ReportServiceConfig holds configuration for the report service
type ReportServiceConfig struct {
	// Reports lists the reports to run, in output order (default: all)
	Reports []string

	// Concurrency bounds how many reports render at once (default: 1)
	Concurrency int
}

// DefaultReportServiceConfig runs every report sequentially.
func DefaultReportServiceConfig() ReportServiceConfig {
	return ReportServiceConfig{
		Reports:     append([]string(nil), config.AllReports...),
		Concurrency: 1,
	}
}

// Artifact is one rendered chart and the shape of the pivot behind it.
type Artifact struct {
	Report     string
	Path       string
	Buckets    int
	Categories int
	Total      int
	Skipped    int
}

// RunResult summarizes a report run.
type RunResult struct {
	RunID     string
	Rows      int
	Artifacts []Artifact
	// SkippedReports lists reports that had nothing to plot.
	SkippedReports []string
	Duration       time.Duration
}

// ReportService aggregates a table and renders each selected report.
type ReportService struct {
	aggregator *Aggregator
	renderer   ChartRenderer
	publisher  ReportPublisher
	metrics    metrics.Recorder
	logger     *log.Logger
	config     ReportServiceConfig
	newRunID   func() string
}

// NewReportService wires the service. publisher may be nil; a nil recorder
// discards metrics.
func NewReportService(
	aggregator *Aggregator,
	renderer ChartRenderer,
	publisher ReportPublisher,
	recorder metrics.Recorder,
	logger *log.Logger,
	cfg ReportServiceConfig,
) *ReportService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if len(cfg.Reports) == 0 {
		cfg.Reports = append([]string(nil), config.AllReports...)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return &ReportService{
		aggregator: aggregator,
		renderer:   renderer,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger.WithComponent(log.ComponentReport),
		config:     cfg,
		newRunID:   func() string { return uuid.NewString() },
	}
}

// Run renders every configured report from the same table. Reports whose
// pivot is empty are skipped with a warning. Publish failures are logged and
// counted but never fail the run.
func (s *ReportService) Run(ctx context.Context, table core.Table) (RunResult, error) {
	start := time.Now()
	result := RunResult{
		RunID: s.newRunID(),
		Rows:  table.Len(),
	}
	logger := s.logger.With(log.FieldRunID, result.RunID)

	logger.InfoContext(ctx, "Report run started",
		log.FieldRows, result.Rows,
		"reports", s.config.Reports,
		"concurrency", s.config.Concurrency)

	artifacts := make([]*Artifact, len(s.config.Reports))
	skipped := make([]int, len(s.config.Reports))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, report := range s.config.Reports {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			artifact, dropped, err := s.runReport(gctx, logger, result.RunID, report, table)
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			skipped[i] = dropped
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		result.Duration = time.Since(start)
		s.metrics.ObserveRunDuration(result.Duration)
		return result, err
	}

	for i, a := range artifacts {
		if a == nil {
			result.SkippedReports = append(result.SkippedReports, s.config.Reports[i])
			continue
		}
		result.Artifacts = append(result.Artifacts, *a)
	}

	// every pivot drops the same unparseable rows
	s.metrics.RecordRows(result.Rows, maxInt(skipped))

	stats := s.aggregator.DateMemoStats()
	s.metrics.RecordDateMemo(stats.Hits, stats.Misses)

	result.Duration = time.Since(start)
	s.metrics.ObserveRunDuration(result.Duration)

	logger.InfoContext(ctx, "Report run finished",
		"charts", len(result.Artifacts),
		"skipped_reports", len(result.SkippedReports),
		log.FieldDuration, result.Duration.Milliseconds())

	return result, nil
}

// runReport aggregates and renders one report. A nil artifact with a nil
// error means the pivot was empty.
func (s *ReportService) runReport(ctx context.Context, logger *log.Logger, runID, report string, table core.Table) (*Artifact, int, error) {
	pv, render, err := s.pivotFor(report, table)
	if err != nil {
		return nil, 0, err
	}

	logger.DebugContext(ctx, "Pivot computed",
		log.FieldReport, report,
		log.FieldBuckets, len(pv.Buckets),
		log.FieldCategories, len(pv.Categories),
		log.FieldSkipped, pv.Skipped)

	path, err := render(ctx, pv)
	if errors.Is(err, chart.ErrNoData) {
		s.metrics.RecordChart(report, metrics.StatusSkipped)
		logger.WarnContext(ctx, "No data to plot, skipping report",
			log.NewFields().
				WithOperation(log.OpRender).
				WithReport(report, len(pv.Buckets), len(pv.Categories), pv.Total(), pv.Skipped).
				ToSlice()...)
		return nil, pv.Skipped, nil
	}
	if err != nil {
		s.metrics.RecordChart(report, metrics.StatusFailed)
		return nil, pv.Skipped, fmt.Errorf("render %s: %w", report, err)
	}
	s.metrics.RecordChart(report, metrics.StatusRendered)

	artifact := &Artifact{
		Report:     report,
		Path:       path,
		Buckets:    len(pv.Buckets),
		Categories: len(pv.Categories),
		Total:      pv.Total(),
		Skipped:    pv.Skipped,
	}

	logger.InfoContext(ctx, "Chart rendered",
		log.NewFields().
			WithOperation(log.OpRender).
			WithReport(report, artifact.Buckets, artifact.Categories, artifact.Total, artifact.Skipped).
			WithArtifact(path, s.renderer.Format()).
			ToSlice()...)

	s.publish(ctx, logger, runID, artifact)
	return artifact, pv.Skipped, nil
}

type renderFunc func(context.Context, core.Pivot) (string, error)

func (s *ReportService) pivotFor(report string, table core.Table) (core.Pivot, renderFunc, error) {
	switch report {
	case config.ReportMonthlySales:
		return s.aggregator.MonthlySales(table), s.renderer.MonthlySales, nil
	case config.ReportReceivedBy:
		return s.aggregator.YearlyReceivedBy(table), s.renderer.ReceivedBy, nil
	case config.ReportTransactionTypes:
		return s.aggregator.YearlyTransactionTypes(table), s.renderer.TransactionTypes, nil
	default:
		return core.Pivot{}, nil, fmt.Errorf("unknown report %q", report)
	}
}

func (s *ReportService) publish(ctx context.Context, logger *log.Logger, runID string, a *Artifact) {
	if s.publisher == nil {
		return
	}

	msg := amqp.NewReportRenderedMessage(runID, a.Report, a.Path, s.renderer.Format(),
		a.Buckets, a.Categories, a.Total, a.Skipped)
	err := s.publisher.PublishReportRendered(ctx, msg)
	s.metrics.RecordPublish(a.Report, err)
	if err != nil {
		logger.With(log.FieldReport, a.Report).WarnContext(ctx, "Failed to publish report notification",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithError(err).
				ToSlice()...)
	}
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
