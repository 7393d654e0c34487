package narrative

import "context"

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is a single-shot prompt. No conversation state is carried between calls.
type LLMRequest struct {
	Model       string
	System      []string
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
	// Provider names the backend that produced Text ("gemini", "bedrock").
	Provider string
}

// LLMClient is the remote text-generation collaborator.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
