package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

type queueClient interface {
	Send(ctx context.Context, msg outboundMessage) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// outboundMessage is an encoded event plus the keys a queue may route on.
// PatientID orders a patient's readings; EventID deduplicates sends.
type outboundMessage struct {
	Body      string
	PatientID string
	EventID   string
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
	PatientID     string
	// ReceiveCount is how many times the queue has handed this message out,
	// including this one. Zero when the queue does not track it.
	ReceiveCount int
}

// Event announces that a new reading was stored for a patient.
type Event struct {
	ID        string        `json:"id"`
	PatientID string        `json:"patient_id"`
	Sample    vitals.Sample `json:"sample"`
}

// ErrInvalidEvent marks payloads that can never be processed.
var ErrInvalidEvent = errors.New("ingest: invalid event")

func encodeEvent(evt Event) (Event, outboundMessage, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return Event{}, outboundMessage{}, fmt.Errorf("ingest: failed to encode event: %w", err)
	}
	return evt, outboundMessage{Body: string(body), PatientID: evt.PatientID, EventID: evt.ID}, nil
}

// DecodeEvent parses a queue body.
func DecodeEvent(body string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if strings.TrimSpace(evt.PatientID) == "" {
		return Event{}, fmt.Errorf("%w: patient_id missing", ErrInvalidEvent)
	}
	if evt.Sample.Timestamp.IsZero() {
		return Event{}, fmt.Errorf("%w: sample timestamp missing", ErrInvalidEvent)
	}
	return evt, nil
}
