package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads patients and vitals from the relational database. It
// never writes.
type PostgresStore struct {
	db querier
}

// NewPostgresStore accepts a *pgxpool.Pool or anything with the same query methods.
func NewPostgresStore(db querier) *PostgresStore {
	if db == nil {
		panic("source: pgx pool required")
	}
	return &PostgresStore{db: db}
}

const patientQuery = `
	SELECT id, name,
		COALESCE(family_email, ''), COALESCE(family_phone, ''),
		COALESCE(clinician_email, ''), COALESCE(clinician_phone, '')
	FROM patients
	WHERE id = $1
`

func (s *PostgresStore) Patient(ctx context.Context, id string) (vitals.Patient, error) {
	var p vitals.Patient
	err := s.db.QueryRow(ctx, patientQuery, id).Scan(
		&p.ID,
		&p.Name,
		&p.Family.Email,
		&p.Family.Phone,
		&p.Clinician.Email,
		&p.Clinician.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vitals.Patient{}, ErrPatientNotFound
		}
		return vitals.Patient{}, fmt.Errorf("source: select patient failed: %w", err)
	}
	return p, nil
}

const windowQuery = `
	SELECT heart_rate, temperature, spo2, recorded_at
	FROM vitals
	WHERE patient_id = $1
	ORDER BY recorded_at DESC
	LIMIT $2
`

// Window queries newest first and reverses so callers get oldest first.
func (s *PostgresStore) Window(ctx context.Context, id string, limit int) (vitals.Window, error) {
	rows, err := s.db.Query(ctx, windowQuery, id, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("source: select vitals failed: %w", err)
	}
	defer rows.Close()

	var w vitals.Window
	for rows.Next() {
		var sample vitals.Sample
		if err := rows.Scan(&sample.HeartRateBPM, &sample.TemperatureC, &sample.SpO2Percent, &sample.Timestamp); err != nil {
			return nil, fmt.Errorf("source: scan vitals failed: %w", err)
		}
		w = append(w, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: iterate vitals failed: %w", err)
	}
	for i, j := 0, len(w)-1; i < j; i, j = i+1, j-1 {
		w[i], w[j] = w[j], w[i]
	}
	return w, nil
}

const patientIDsQuery = `SELECT id FROM patients ORDER BY id`

func (s *PostgresStore) PatientIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, patientIDsQuery)
	if err != nil {
		return nil, fmt.Errorf("source: list patients failed: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("source: list patients failed: %w", err)
	}
	return ids, nil
}

var _ Store = (*PostgresStore)(nil)
