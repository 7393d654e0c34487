package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/vitalwatch/cmd/mainconfig"
	"github.com/wolfman30/vitalwatch/internal/api/router"
	"github.com/wolfman30/vitalwatch/internal/app/bootstrap"
	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/ingest"
	"github.com/wolfman30/vitalwatch/internal/monitor"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/source"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vitalwatch", "env", cfg.Env, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadOptionalAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)

	store, closeStore, err := bootstrap.BuildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build patient store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, bootstrap.PipelineDeps{
		AWS:     awsCfg,
		Redis:   redisClient,
		Metrics: pipelineMetrics,
	}, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	handler := ingest.NewHandler(store, pipeline, pipelineMetrics, logger)
	if redisClient != nil {
		handler.WithProcessedStore(ingest.NewRedisProcessedStore(redisClient, 0))
	}
	var worker *ingest.Worker
	if cfg.UsesMemoryQueue() {
		// Nothing outside this process can reach the in-memory queue, so it is
		// seeded once with each patient's newest stored reading.
		memQueue := ingest.NewMemoryQueue(0)
		worker = ingest.NewWorker(handler, memQueue, logger, ingest.WithWorkerCount(cfg.WorkerCount), ingest.WithMaxReceives(cfg.MaxReceives))
		worker.Start(ctx)
		replayed, err := ingest.NewPublisher(memQueue, logger).ReplayLatest(ctx, store)
		if err != nil {
			logger.Error("failed to seed in-memory ingestion queue", "error", err)
		}
		logger.Info("using in-memory ingestion queue; it only carries the startup replay, use SWEEP_INTERVAL for periodic checks", "replayed", replayed)
	} else {
		queue := ingest.NewSQSQueue(sqs.NewFromConfig(*awsCfg), cfg.IngestQueueURL)
		worker = ingest.NewWorker(handler, queue, logger, ingest.WithWorkerCount(cfg.WorkerCount), ingest.WithMaxReceives(cfg.MaxReceives))
		worker.Start(ctx)
	}

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		runSweeps(ctx, pipeline, store, cfg, logger)
	}()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(&router.Config{
			Logger:         logger,
			MetricsHandler: promhttp.Handler(),
			Ready: func(r *http.Request) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Ping(r.Context()).Err()
			},
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down vitalwatch...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		<-sweepDone
		close(waitCh)
	}()
	select {
	case <-waitCh:
		logger.Info("vitalwatch stopped")
	case <-shutdownCtx.Done():
		logger.Error("vitalwatch shutdown timed out", "error", shutdownCtx.Err())
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	fmt.Println("vitalwatch exited gracefully")
}

// runSweeps re-evaluates every patient on SWEEP_INTERVAL. Zero disables it.
func runSweeps(ctx context.Context, pipeline *monitor.Pipeline, store source.Store, cfg *appconfig.Config, logger *logging.Logger) {
	if cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			results, err := pipeline.Sweep(ctx, store, nil, cfg.SweepConcurrency)
			if err != nil {
				logger.Error("sweep failed", "error", err)
				continue
			}
			alerted, failed := 0, 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
				if r.Outcome.Alerted {
					alerted++
				}
			}
			logger.Info("sweep finished", "patients", len(results), "alerted", alerted, "failed", failed)
		}
	}
}
