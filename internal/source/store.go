package source

import (
	"context"
	"errors"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

// ErrPatientNotFound is returned when no patient matches the id.
var ErrPatientNotFound = errors.New("source: patient not found")

// Store is the read-only view of patients and their readings.
type Store interface {
	Patient(ctx context.Context, id string) (vitals.Patient, error)
	// Window returns up to limit of the newest samples, oldest first.
	Window(ctx context.Context, id string, limit int) (vitals.Window, error)
	PatientIDs(ctx context.Context) ([]string, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return vitals.DefaultWindowSize
	}
	return limit
}
