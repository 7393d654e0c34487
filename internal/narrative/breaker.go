package narrative

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// BreakerConfig controls when the remote provider is skipped.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker. Zero disables tripping.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// BreakerLLMClient stops calling a failing provider for a cooldown period so
// summaries drop straight to the local narrative instead of waiting on timeouts.
type BreakerLLMClient struct {
	next LLMClient
	cb   *gobreaker.CircuitBreaker[LLMResponse]
}

func NewBreakerLLMClient(next LLMClient, cfg BreakerConfig, logger *logging.Logger) *BreakerLLMClient {
	if next == nil {
		panic("narrative: breaker requires a client")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "narrative-llm",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("narrative llm breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerLLMClient{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[LLMResponse](settings),
	}
}

func (c *BreakerLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	return c.cb.Execute(func() (LLMResponse, error) {
		return c.next.Complete(ctx, req)
	})
}

// State reports the breaker state, e.g. "closed" or "open".
func (c *BreakerLLMClient) State() string {
	return c.cb.State().String()
}
