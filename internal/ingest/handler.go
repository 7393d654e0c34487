package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/vitalwatch/internal/monitor"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/source"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// Evaluator is the pipeline step run for each event.
type Evaluator interface {
	Ingest(ctx context.Context, patient vitals.Patient, w vitals.Window) (monitor.Outcome, error)
	WindowSize() int
}

// Handler turns one ingestion event into a pipeline evaluation.
type Handler struct {
	store     source.Store
	evaluator Evaluator
	metrics   *metrics.PipelineMetrics
	logger    *logging.Logger
	processed ProcessedStore
}

func NewHandler(store source.Store, evaluator Evaluator, m *metrics.PipelineMetrics, logger *logging.Logger) *Handler {
	if store == nil {
		panic("ingest: store cannot be nil")
	}
	if evaluator == nil {
		panic("ingest: evaluator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, evaluator: evaluator, metrics: m, logger: logger}
}

// WithProcessedStore enables duplicate-event detection. A nil store is ignored.
func (h *Handler) WithProcessedStore(store ProcessedStore) *Handler {
	if store != nil {
		h.processed = store
	}
	return h
}

// Permanent reports whether retrying err can never succeed.
func Permanent(err error) bool {
	return errors.Is(err, ErrInvalidEvent) || errors.Is(err, source.ErrPatientNotFound)
}

// HandleBody decodes and handles a raw queue body.
func (h *Handler) HandleBody(ctx context.Context, body string) (monitor.Outcome, error) {
	evt, err := DecodeEvent(body)
	if err != nil {
		h.metrics.ObserveIngest("invalid")
		return monitor.Outcome{}, err
	}
	return h.Handle(ctx, evt)
}

// Handle loads the patient and their recent window, merges the event's sample
// and evaluates it. Storage is never written here. With a processed store the
// event id is claimed before evaluation and released again on transient
// failure so redelivery can retry it.
func (h *Handler) Handle(ctx context.Context, evt Event) (out monitor.Outcome, err error) {
	logger := h.logger.ForPatient(evt.PatientID).With("event_id", evt.ID)

	if h.processed != nil && evt.ID != "" {
		claimed, claimErr := h.processed.Claim(ctx, evt.ID)
		switch {
		case claimErr != nil:
			logger.Warn("processed-event claim failed", "error", claimErr)
		case !claimed:
			h.metrics.ObserveIngest("duplicate")
			logger.Info("skipping duplicate vitals event")
			return monitor.Outcome{}, nil
		default:
			defer func() {
				if err == nil || Permanent(err) {
					return
				}
				if relErr := h.processed.Release(context.WithoutCancel(ctx), evt.ID); relErr != nil {
					logger.Warn("failed to release vitals event claim", "error", relErr)
				}
			}()
		}
	}

	patient, err := h.store.Patient(ctx, evt.PatientID)
	if err != nil {
		h.observeFailure(err)
		return monitor.Outcome{}, fmt.Errorf("ingest: load patient: %w", err)
	}
	limit := h.evaluator.WindowSize()
	w, err := h.store.Window(ctx, evt.PatientID, limit)
	if err != nil {
		h.observeFailure(err)
		return monitor.Outcome{}, fmt.Errorf("ingest: load window: %w", err)
	}
	w = w.WithSample(evt.Sample, limit)

	out, err = h.evaluator.Ingest(ctx, patient, w)
	if err != nil {
		h.metrics.ObserveIngest("error")
		return out, fmt.Errorf("ingest: evaluate: %w", err)
	}

	status := "ok"
	switch {
	case out.Suppressed:
		status = "suppressed"
	case out.Alerted && !out.Report.OK():
		status = "alert_partial"
		logger.Error("alert delivery incomplete", "error", out.Report.Err())
	case out.Alerted:
		status = "alerted"
	}
	h.metrics.ObserveIngest(status)
	logger.Info("vitals event processed", "status", out.Assessment.Status.String(), "result", status)
	return out, nil
}

func (h *Handler) observeFailure(err error) {
	if errors.Is(err, source.ErrPatientNotFound) {
		h.metrics.ObserveIngest("not_found")
		return
	}
	h.metrics.ObserveIngest("error")
}
