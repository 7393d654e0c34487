package ingest

import (
	"context"
	"fmt"

	"github.com/wolfman30/vitalwatch/internal/source"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// Publisher announces new readings to the ingestion queue.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("ingest: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// Publish enqueues an event for the sample and returns its id.
func (p *Publisher) Publish(ctx context.Context, patientID string, sample vitals.Sample) (string, error) {
	evt, msg, err := encodeEvent(Event{PatientID: patientID, Sample: sample})
	if err != nil {
		return "", err
	}
	if err := p.queue.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("ingest: failed to enqueue event: %w", err)
	}
	p.logger.Debug("vitals event enqueued", "event_id", evt.ID, "patient_id", patientID)
	return evt.ID, nil
}

// ReplayLatest publishes the newest stored reading of every patient and
// returns how many events were enqueued. Patients without readings are skipped.
func (p *Publisher) ReplayLatest(ctx context.Context, store source.Store) (int, error) {
	ids, err := store.PatientIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingest: list patients: %w", err)
	}
	sent := 0
	for _, id := range ids {
		w, err := store.Window(ctx, id, 1)
		if err != nil {
			return sent, fmt.Errorf("ingest: load window for %s: %w", id, err)
		}
		latest, ok := w.Latest()
		if !ok {
			continue
		}
		if _, err := p.Publish(ctx, id, latest); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
