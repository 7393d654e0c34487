package narrative

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

var tracer = otel.Tracer("vitalwatch.internal.narrative")

const (
	defaultTimeout   = 15 * time.Second
	defaultMaxTokens = 600
)

var errEmptyNarrative = errors.New("narrative: response contained no narrative text")

// Generator turns a vitals window into a readable health summary. It never
// fails: any remote problem yields the local fallback narrative.
type Generator struct {
	llm         LLMClient
	advisor     *media.Advisor
	logger      *logging.Logger
	metrics     *metrics.PipelineMetrics
	timeout     time.Duration
	model       string
	maxTokens   int32
	temperature float32
}

// Option customizes a Generator.
type Option func(*Generator)

// WithTimeout bounds the remote call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithModel overrides the provider's default model id.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithMetrics records summary sources and call latency.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator builds a generator. A nil llm means every summary uses the
// local fallback.
func NewGenerator(llm LLMClient, advisor *media.Advisor, logger *logging.Logger, opts ...Option) *Generator {
	if advisor == nil {
		panic("narrative: media advisor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	g := &Generator{
		llm:         llm,
		advisor:     advisor,
		logger:      logger,
		timeout:     defaultTimeout,
		maxTokens:   defaultMaxTokens,
		temperature: 0.4,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the summary for a patient's window.
func (g *Generator) Generate(ctx context.Context, w vitals.Window, patientName string) vitals.Summary {
	ctx, span := tracer.Start(ctx, "narrative.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("vitalwatch.samples", len(w)))

	avg, ok := w.Averages()
	if !ok {
		span.SetAttributes(attribute.String("vitalwatch.summary_source", string(vitals.SourceNoData)))
		g.metrics.ObserveNarrative(string(vitals.SourceNoData))
		return vitals.Summary{
			Narrative: NoDataNarrative(patientName),
			Source:    vitals.SourceNoData,
		}
	}

	baseline, _ := g.advisor.Suggest(avg)
	summary, err := g.remote(ctx, w, avg, patientName, baseline)
	if err != nil {
		span.RecordError(err)
		g.logger.Warn("narrative generation fell back to local summary", "error", err, "samples", len(w))
		summary = vitals.Summary{
			Narrative: FallbackNarrative(patientName, avg),
			Media:     baseline,
			Source:    vitals.SourceFallback,
		}
	}

	span.SetAttributes(attribute.String("vitalwatch.summary_source", string(summary.Source)))
	g.metrics.ObserveNarrative(string(summary.Source))
	return summary
}

func (g *Generator) remote(ctx context.Context, w vitals.Window, avg vitals.Averages, patientName string, baseline vitals.MediaReference) (vitals.Summary, error) {
	if g.llm == nil {
		return vitals.Summary{}, errors.New("narrative: no text generation client configured")
	}

	req := LLMRequest{
		Model:       g.model,
		Prompt:      BuildPrompt(patientName, w, avg),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	start := time.Now()
	resp, err := g.complete(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.metrics.ObserveLLMLatency(outcome, time.Since(start).Seconds())
	if err != nil {
		return vitals.Summary{}, err
	}

	text, ref := ParseResponse(resp.Text, baseline)
	if text == "" {
		return vitals.Summary{}, errEmptyNarrative
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("vitalwatch.llm_provider", resp.Provider))
	g.logger.Debug("narrative generated", "provider", resp.Provider, "stop_reason", resp.StopReason, "total_tokens", resp.Usage.TotalTokens)
	return vitals.Summary{Narrative: text, Media: ref, Source: vitals.SourceAI}, nil
}

type completion struct {
	resp LLMResponse
	err  error
}

// complete issues the call under the timeout and returns as soon as the
// deadline passes, even if the client does not honour cancellation.
func (g *Generator) complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		resp, err := g.llm.Complete(ctx, req)
		done <- completion{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return LLMResponse{}, ctx.Err()
	case c := <-done:
		return c.resp, c.err
	}
}
