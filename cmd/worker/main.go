package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legalease-app/backend/internal/bootstrap"
	"github.com/legalease-app/backend/internal/config"
	"github.com/legalease-app/backend/internal/observability/logging"
	"github.com/legalease-app/backend/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	processUC := app.ProcessUC.WithObserver(workerMetrics)

	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     metricsMux(workerMetrics),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worker metrics listening", slog.String("port", cfg.WorkerMetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	logger.Info("worker subscribed",
		slog.String("subject", cfg.NATSSubject),
		slog.String("group", cfg.NATSGroup))
	err = app.Queue.SubscribeContractUploaded(ctx, func(handlerCtx context.Context, contractID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.ProcessTimeout())
		defer cancel()

		workerMetrics.StartContract()
		start := time.Now()
		processErr := processUC.ProcessByID(processCtx, contractID)
		workerMetrics.FinishContract(time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		logger.Error("worker subscribe error", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
