package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/vitalwatch/cmd/mainconfig"
	"github.com/wolfman30/vitalwatch/internal/app/bootstrap"
	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/ingest"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	awsCfg, err := mainconfig.LoadOptionalAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Lambda has no scrape endpoint; metrics stay process-local.
	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.NewRegistry())
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
	lambda.Start(handler.HandleSQSEvent)
}
