package services

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"salesplot/internal/amqp"
	"salesplot/internal/chart"
	"salesplot/internal/config"
	"salesplot/internal/core"
	"salesplot/internal/log"
	"salesplot/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu       sync.Mutex
	rendered map[string]core.Pivot
	fail     map[string]error
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{rendered: map[string]core.Pivot{}, fail: map[string]error{}}
}

func (f *fakeRenderer) render(name string, pv core.Pivot) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[name]; err != nil {
		return "", err
	}
	if pv.IsEmpty() {
		return "", chart.ErrNoData
	}
	f.rendered[name] = pv
	return filepath.Join("out", name+".png"), nil
}

func (f *fakeRenderer) MonthlySales(_ context.Context, pv core.Pivot) (string, error) {
	return f.render(config.ReportMonthlySales, pv)
}

func (f *fakeRenderer) ReceivedBy(_ context.Context, pv core.Pivot) (string, error) {
	return f.render(config.ReportReceivedBy, pv)
}

func (f *fakeRenderer) TransactionTypes(_ context.Context, pv core.Pivot) (string, error) {
	return f.render(config.ReportTransactionTypes, pv)
}

func (f *fakeRenderer) Format() string { return "png" }

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ReportRenderedMessage
	err  error
}

func (f *fakePublisher) PublishReportRendered(_ context.Context, msg *amqp.ReportRenderedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func sampleTable() core.Table {
	return core.NewTable([]core.Transaction{
		tx("1/15/2022", "Fastfood", "Mr.", "Cash"),
		tx("3/2/2022", "Beverages", "Mrs.", "Online"),
		tx("7/9/2023", "Fastfood", "Mrs.", "Cash"),
		tx("bad", "Fastfood", "Mr.", "Cash"),
	})
}

func newTestService(r ChartRenderer, p ReportPublisher, rec metrics.Recorder, cfg ReportServiceConfig) (*ReportService, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf})
	s := NewReportService(newTestAggregator(), r, p, rec, logger, cfg)
	s.newRunID = func() string { return "run-1" }
	return s, &buf
}

func TestReportService_RunAllReports(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		renderer := newFakeRenderer()
		publisher := &fakePublisher{}
		cfg := DefaultReportServiceConfig()
		cfg.Concurrency = concurrency
		s, _ := newTestService(renderer, publisher, nil, cfg)

		result, err := s.Run(context.Background(), sampleTable())
		require.NoError(t, err)

		assert.Equal(t, "run-1", result.RunID)
		assert.Equal(t, 4, result.Rows)
		require.Len(t, result.Artifacts, 3)
		assert.Equal(t, config.ReportMonthlySales, result.Artifacts[0].Report)
		assert.Equal(t, config.ReportReceivedBy, result.Artifacts[1].Report)
		assert.Equal(t, config.ReportTransactionTypes, result.Artifacts[2].Report)
		for _, a := range result.Artifacts {
			assert.Equal(t, 3, a.Total)
			assert.Equal(t, 1, a.Skipped)
		}
		assert.Equal(t, 2, result.Artifacts[1].Buckets)
		assert.Empty(t, result.SkippedReports)

		require.Len(t, publisher.msgs, 3)
		for _, m := range publisher.msgs {
			assert.Equal(t, "run-1", m.RunID)
			assert.Equal(t, "png", m.Format)
		}
	}
}

func TestReportService_SelectedReportsOnly(t *testing.T) {
	renderer := newFakeRenderer()
	s, _ := newTestService(renderer, nil, nil, ReportServiceConfig{Reports: []string{config.ReportReceivedBy}})

	result, err := s.Run(context.Background(), sampleTable())
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, config.ReportReceivedBy, result.Artifacts[0].Report)
	assert.Len(t, renderer.rendered, 1)
}

func TestReportService_EmptyTableSkipsReports(t *testing.T) {
	publisher := &fakePublisher{}
	rec := metrics.NewRunMetrics()
	s, logs := newTestService(newFakeRenderer(), publisher, rec, DefaultReportServiceConfig())

	result, err := s.Run(context.Background(), core.NewTable(nil))
	require.NoError(t, err)

	assert.Empty(t, result.Artifacts)
	assert.Equal(t, config.AllReports, result.SkippedReports)
	assert.Empty(t, publisher.msgs)
	assert.Contains(t, logs.String(), "No data to plot, skipping report")
	assert.Equal(t, 3, gatherCount(t, rec, "salesplot_charts_total"))
}

func TestReportService_PublishFailureIsNotFatal(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("connection refused")}
	s, logs := newTestService(newFakeRenderer(), publisher, nil, DefaultReportServiceConfig())

	result, err := s.Run(context.Background(), sampleTable())
	require.NoError(t, err)
	assert.Len(t, result.Artifacts, 3)
	assert.Len(t, publisher.msgs, 3)
	assert.Contains(t, logs.String(), "Failed to publish report notification")
}

func TestReportService_RenderErrorFailsRun(t *testing.T) {
	renderer := newFakeRenderer()
	renderer.fail[config.ReportReceivedBy] = errors.New("disk full")
	s, _ := newTestService(renderer, nil, nil, DefaultReportServiceConfig())

	_, err := s.Run(context.Background(), sampleTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render received_by")
}

func TestReportService_UnknownReport(t *testing.T) {
	s, _ := newTestService(newFakeRenderer(), nil, nil, ReportServiceConfig{Reports: []string{"heatmap"}})

	_, err := s.Run(context.Background(), sampleTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heatmap")
}

func TestReportService_CanceledContext(t *testing.T) {
	s, _ := newTestService(newFakeRenderer(), nil, nil, DefaultReportServiceConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, sampleTable())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewReportService_Defaults(t *testing.T) {
	s := NewReportService(newTestAggregator(), newFakeRenderer(), nil, nil, nil, ReportServiceConfig{})

	assert.Equal(t, config.AllReports, s.config.Reports)
	assert.Equal(t, 1, s.config.Concurrency)
	assert.NotEmpty(t, s.newRunID())
}

func TestReportService_RecordsMetrics(t *testing.T) {
	rec := metrics.NewRunMetrics()
	s, _ := newTestService(newFakeRenderer(), &fakePublisher{}, rec, DefaultReportServiceConfig())

	_, err := s.Run(context.Background(), sampleTable())
	require.NoError(t, err)

	assert.Equal(t, 1, gatherCount(t, rec, "salesplot_rows_skipped"))
	assert.Equal(t, 3, gatherCount(t, rec, "salesplot_notifications_total"))
}

func gatherCount(t *testing.T, rec *metrics.RunMetrics, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(rec.Registry(), name)
	require.NoError(t, err)
	return n
}
