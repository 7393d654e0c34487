package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/narrative"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// BuildLLMClient chains Gemini (primary) and Bedrock (secondary) behind a
// circuit breaker. It returns nil when neither is configured, which makes
// every summary use the local fallback.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) narrative.LLMClient {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	var primary, secondary narrative.LLMClient
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gemini, err := narrative.NewGeminiLLMClient(ctx, key, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini client unavailable", "error", err)
		} else {
			primary = gemini
		}
	}
	if cfg.BedrockModelID != "" && awsCfg != nil {
		secondary = narrative.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID)
	}

	var client narrative.LLMClient
	switch {
	case primary != nil && secondary != nil:
		client = narrative.NewFallbackLLMClient(primary, secondary, logger)
	case primary != nil:
		client = primary
	case secondary != nil:
		client = secondary
	default:
		logger.Warn("no text generation provider configured; summaries use the local fallback")
		return nil
	}

	return narrative.NewBreakerLLMClient(client, narrative.BreakerConfig{
		ConsecutiveFailures: uint32(max(cfg.NarrativeBreakerFailures, 0)),
		Cooldown:            cfg.NarrativeBreakerCooldown,
	}, logger)
}

// BuildGenerator wires the narrative generator with config timeouts.
func BuildGenerator(llm narrative.LLMClient, advisor *media.Advisor, cfg *appconfig.Config, m *metrics.PipelineMetrics, logger *logging.Logger) *narrative.Generator {
	opts := []narrative.Option{narrative.WithMetrics(m)}
	if cfg != nil {
		opts = append(opts, narrative.WithTimeout(cfg.NarrativeTimeout))
	}
	return narrative.NewGenerator(llm, advisor, logger, opts...)
}
