package narrative

import (
	"context"
	"errors"

	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// FallbackLLMClient asks a secondary provider when the primary fails. An
// exhausted summary deadline is not retried: the generator has already moved
// on to the local narrative by then.
type FallbackLLMClient struct {
	primary   LLMClient
	secondary LLMClient
	logger    *logging.Logger
}

func NewFallbackLLMClient(primary, secondary LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{primary: primary, secondary: secondary, logger: logger}
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	if c.secondary == nil || ctx.Err() != nil {
		return LLMResponse{}, err
	}

	c.logger.Warn("primary summary provider failed, trying secondary",
		"error", err,
		"blocked", errors.Is(err, ErrContentBlocked),
	)
	resp, secondaryErr := c.secondary.Complete(ctx, req)
	if secondaryErr != nil {
		c.logger.Error("secondary summary provider failed", "primary_error", err, "secondary_error", secondaryErr)
		return LLMResponse{}, secondaryErr
	}
	c.logger.Info("summary written by secondary provider", "provider", resp.Provider)
	return resp, nil
}
