package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

type fixturePatient struct {
	vitals.Patient
	Vitals []vitals.Sample `json:"vitals"`
}

type fixtureFile struct {
	Patients []fixturePatient `json:"patients"`
}

// MemoryStore keeps patients in process. It backs local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	patients map[string]vitals.Patient
	samples  map[string]vitals.Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients: make(map[string]vitals.Patient),
		samples:  make(map[string]vitals.Window),
	}
}

// LoadFixture reads a JSON file of patients with their readings.
func LoadFixture(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes {"patients":[{"id","name","family","clinician","vitals":[...]}]}.
func ParseFixture(data []byte) (*MemoryStore, error) {
	var file fixtureFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("source: decode fixture: %w", err)
	}
	store := NewMemoryStore()
	for _, p := range file.Patients {
		if p.ID == "" {
			return nil, fmt.Errorf("source: fixture patient %q has no id", p.Name)
		}
		store.Put(p.Patient, p.Vitals...)
	}
	return store, nil
}

// Put adds or replaces a patient and appends any samples given.
func (s *MemoryStore) Put(p vitals.Patient, samples ...vitals.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
	if len(samples) > 0 {
		s.samples[p.ID] = append(s.samples[p.ID], samples...).Chronological()
	}
}

func (s *MemoryStore) Patient(ctx context.Context, id string) (vitals.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return vitals.Patient{}, ErrPatientNotFound
	}
	return p, nil
}

func (s *MemoryStore) Window(ctx context.Context, id string, limit int) (vitals.Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.patients[id]; !ok {
		return nil, ErrPatientNotFound
	}
	recent := s.samples[id].Recent(normalizeLimit(limit))
	out := make(vitals.Window, len(recent))
	copy(out, recent)
	return out, nil
}

func (s *MemoryStore) PatientIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.patients))
	for id := range s.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ Store = (*MemoryStore)(nil)
