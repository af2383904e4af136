package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rahmatrdn/go-query-insight/config"
	_ "github.com/rahmatrdn/go-query-insight/docs"
	"github.com/rahmatrdn/go-query-insight/internal/advisor"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"github.com/rahmatrdn/go-query-insight/internal/http/handler"
	"github.com/rahmatrdn/go-query-insight/internal/metrics"
	"github.com/rahmatrdn/go-query-insight/internal/queue/rabbitmq"
	"github.com/rahmatrdn/go-query-insight/internal/repository/clickhouse"
	"github.com/rahmatrdn/go-query-insight/internal/repository/sqlite"
	"github.com/rahmatrdn/go-query-insight/internal/scheduler"
	"github.com/rahmatrdn/go-query-insight/internal/usecase"
	"go.uber.org/zap"
)

// @title        Query Insight API
// @version      1.0
// @description  Slow query fingerprinting, ranking and advice for registered ClickHouse connections.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := helper.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	validator := helper.NewValidator()
	connectionRepo := sqlite.NewConnectionRepository(db)
	recordRepo := sqlite.NewRecordRepository(db)
	reportRepo := sqlite.NewReportRepository(db)

	chClient := clickhouse.NewClickHouseClient(logger)
	defer func() { _ = chClient.Close() }()

	// No remote advisory service is configured; every pattern gets rule advice.
	recommender := advisor.NewFallbackAdvisor(nil, cfg.Report.AdvisorTimeout, m, logger)

	connectionUsecase := usecase.NewConnectionUsecase(connectionRepo, reportRepo, chClient, validator)
	reportUsecase := usecase.NewReportUsecase(
		reportRepo,
		connectionRepo,
		recordRepo,
		chClient,
		recommender,
		validator,
		m,
		logger,
		usecase.ReportOptions{
			Window:           cfg.Report.Window,
			TopN:             cfg.Report.TopN,
			MinDurationMs:    cfg.Report.MinDurationMs,
			QueryLogLimit:    cfg.Report.QueryLogLimit,
			AggregateWorkers: cfg.Report.AggregateWorkers,
		},
	)

	sched, err := scheduler.New(reportUsecase, recordRepo, scheduler.Options{
		RefreshInterval: cfg.Report.RefreshInterval,
		RecordRetention: cfg.Report.RecordRetention,
	}, logger)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = sched.Shutdown() }()

	if cfg.RabbitMQ.URL != "" {
		consumer := rabbitmq.NewConsumer(rabbitmq.Options{
			URL:      cfg.RabbitMQ.URL,
			Queue:    cfg.RabbitMQ.Queue,
			Prefetch: cfg.RabbitMQ.Prefetch,
		}, recordRepo, validator, m, logger)
		if err := consumer.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = consumer.Close() }()
	}

	app := handler.NewApp(logger)
	handler.NewSystemHandler(reg).Register(app)
	handler.NewConnectionHandler(connectionUsecase).Register(app)
	handler.NewReportHandler(reportUsecase).Register(app)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.AppPort)
		logger.Info("query-insight listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
