package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/monitor"
	"github.com/wolfman30/vitalwatch/internal/notify"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/triage"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// PipelineDeps are the runtime resources the pipeline is assembled from. Any
// of them may be nil.
type PipelineDeps struct {
	AWS     *aws.Config
	Redis   *redis.Client
	Metrics *metrics.PipelineMetrics
}

// BuildPipeline loads policies and assembles the monitoring pipeline.
func BuildPipeline(ctx context.Context, cfg *appconfig.Config, deps PipelineDeps, logger *logging.Logger) (*monitor.Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	policies, err := triage.LoadPolicies(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load policies: %w", err)
	}
	logger.Info("triage policies loaded", "alert_gate", policies.AlertGate.String())

	sink, err := BuildNotificationSink(cfg, deps.AWS, logger)
	if err != nil {
		return nil, err
	}

	advisor := media.NewAdvisor(policies)
	llm := BuildLLMClient(ctx, cfg, deps.AWS, logger)

	return monitor.NewPipeline(monitor.Deps{
		Classifier: triage.NewClassifier(policies),
		Advisor:    advisor,
		Generator:  BuildGenerator(llm, advisor, cfg, deps.Metrics, logger),
		Dispatcher: notify.NewDispatcher(sink, logger, deps.Metrics),
		Suppressor: BuildSuppressor(deps.Redis, cfg, logger),
		Metrics:    deps.Metrics,
		Logger:     logger,
		WindowSize: cfg.WindowSize,
	}), nil
}
