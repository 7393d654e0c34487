package monitor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

// PatientSource is the read side the sweep needs.
type PatientSource interface {
	Patient(ctx context.Context, id string) (vitals.Patient, error)
	Window(ctx context.Context, id string, limit int) (vitals.Window, error)
	PatientIDs(ctx context.Context) ([]string, error)
}

// SweepResult is one patient's evaluation.
type SweepResult struct {
	PatientID string
	Outcome   Outcome
	Err       error
}

const defaultSweepConcurrency = 4

// Sweep evaluates each patient independently. A failure for one patient is
// recorded in its result and never stops the rest. When ids is empty every
// known patient is swept.
func (p *Pipeline) Sweep(ctx context.Context, src PatientSource, ids []string, concurrency int) ([]SweepResult, error) {
	if src == nil {
		return nil, fmt.Errorf("monitor: sweep source is nil")
	}
	if len(ids) == 0 {
		all, err := src.PatientIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("monitor: list patients: %w", err)
		}
		ids = all
	}
	if concurrency <= 0 {
		concurrency = defaultSweepConcurrency
	}

	results := make([]SweepResult, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			out, err := p.evaluate(ctx, src, id)
			results[i] = SweepResult{PatientID: id, Outcome: out, Err: err}
			if err != nil {
				p.logger.ForPatient(id).Error("sweep evaluation failed", "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (p *Pipeline) evaluate(ctx context.Context, src PatientSource, id string) (Outcome, error) {
	patient, err := src.Patient(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("monitor: load patient %s: %w", id, err)
	}
	w, err := src.Window(ctx, id, p.windowSize)
	if err != nil {
		return Outcome{}, fmt.Errorf("monitor: load window %s: %w", id, err)
	}
	return p.Ingest(ctx, patient, w.Chronological())
}
