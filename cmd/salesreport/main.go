package main

import (
	"context"
	"os"
	"time"

	"salesplot/internal/amqp"
	"salesplot/internal/backend"
	"salesplot/internal/chart"
	"salesplot/internal/cli"
	"salesplot/internal/config"
	"salesplot/internal/core"
	"salesplot/internal/log"
	"salesplot/internal/metrics"
	"salesplot/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Report run failed", log.FieldError, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	loadStart := time.Now()
	table, err := res.Reader.ReadTransactions(ctx)
	if err != nil {
		return err
	}
	logger.WithComponent(log.ComponentSource).Info("Transactions loaded",
		log.FieldBackend, cfg.DataBackend,
		log.FieldRows, table.Len(),
		log.FieldDuration, time.Since(loadStart).Milliseconds())

	renderer, err := chart.NewRenderer(cfg.OutputDir, cfg.ChartFormat)
	if err != nil {
		return err
	}

	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WithComponent(log.ComponentAMQP).Warn("Failed to initialize AMQP client, continuing without notifications",
				log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.WithComponent(log.ComponentAMQP).Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	recorder := metrics.NewRunMetrics()
	aggregator := services.NewAggregator(core.NewDateParser(cfg.DateLayouts, cfg.DateMemoSize))
	service := services.NewReportService(aggregator, renderer, publisher, recorder, logger,
		services.ReportServiceConfig{
			Reports:     cfg.Reports,
			Concurrency: cfg.RenderConcurrency,
		})

	result, err := service.Run(ctx, table)
	pushMetrics(cfg, recorder, result.RunID, logger)
	if err != nil {
		return err
	}

	for _, a := range result.Artifacts {
		logger.Info("Chart written", log.FieldReport, a.Report, log.FieldPath, a.Path)
	}
	return nil
}

// pushMetrics runs on its own deadline so a cancelled run still reports.
func pushMetrics(cfg *config.Config, recorder *metrics.RunMetrics, runID string, logger *log.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PushTimeout)
	defer cancel()

	mlog := logger.WithComponent(log.ComponentMetrics)
	if err := recorder.Push(ctx, cfg.PushgatewayURL, cfg.PushJobName, runID); err != nil {
		mlog.Warn("Failed to push metrics", log.FieldError, err)
		return
	}
	mlog.Info("Metrics pushed", "gateway", cfg.PushgatewayURL, log.FieldRunID, runID)
}
