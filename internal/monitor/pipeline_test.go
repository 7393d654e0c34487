package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/narrative"
	"github.com/wolfman30/vitalwatch/internal/notify"
	"github.com/wolfman30/vitalwatch/internal/triage"
	"github.com/wolfman30/vitalwatch/internal/vitals"
)

type recordingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *recordingSink) Deliver(ctx context.Context, channel notify.Channel, address string, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixedSuppressor struct {
	allow bool
	err   error
	calls int
}

func (f *fixedSuppressor) Allow(ctx context.Context, patientID string) (bool, error) {
	f.calls++
	return f.allow, f.err
}

func newTestPipeline(t *testing.T, sink notify.NotificationSink, sup Suppressor) *Pipeline {
	t.Helper()
	policies := triage.DefaultPolicies()
	advisor := media.NewAdvisor(policies)
	return NewPipeline(Deps{
		Classifier: triage.NewClassifier(policies),
		Advisor:    advisor,
		Generator:  narrative.NewGenerator(nil, advisor, nil),
		Dispatcher: notify.NewDispatcher(sink, nil, nil),
		Suppressor: sup,
	})
}

var ana = vitals.Patient{
	ID:        "p-1",
	Name:      "Ana",
	Family:    vitals.Contact{Email: "fam@example.com", Phone: "+15550001111"},
	Clinician: vitals.Contact{Email: "doc@example.com", Phone: "+15550002222"},
}

func sample(hr int, temp float64, spo2 int) vitals.Sample {
	return vitals.Sample{HeartRateBPM: hr, TemperatureC: temp, SpO2Percent: spo2, Timestamp: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func TestPipeline_WarningWithoutAlert(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, sink, nil)
	w := vitals.Window{sample(95, 37.0, 98)}

	assert.Equal(t, vitals.StatusWarning, p.ClassifyLatest(w))
	assert.Equal(t, media.CardiacVideo, p.AdviseMedia(w))
	assert.False(t, p.EvaluateAlertGate(w))

	out, err := p.Ingest(context.Background(), ana, w)
	require.NoError(t, err)
	assert.False(t, out.Alerted)
	assert.Equal(t, 0, sink.count())
}

// hr 102 is above the dashboard critical bound but below the alert gate.
func TestPipeline_CriticalBelowAlertGate(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, sink, nil)
	w := vitals.Window{sample(102, 37.0, 98)}

	assert.Equal(t, vitals.StatusCritical, p.ClassifyLatest(w))
	assert.Equal(t, media.CardiacVideo, p.AdviseMedia(w))
	assert.False(t, p.EvaluateAlertGate(w))

	out, err := p.Ingest(context.Background(), ana, w)
	require.NoError(t, err)
	assert.Equal(t, vitals.StatusCritical, out.Assessment.Status)
	assert.False(t, out.Alerted)
	assert.Equal(t, 0, sink.count())
}

func TestPipeline_CriticalDispatches(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, sink, nil)
	w := vitals.Window{sample(58, 39.0, 90)}

	out, err := p.Ingest(context.Background(), ana, w)
	require.NoError(t, err)

	assert.Equal(t, vitals.StatusCritical, out.Assessment.Status)
	assert.Equal(t, media.RespiratoryVideo, out.Assessment.Media)
	assert.True(t, out.Assessment.Gate)
	assert.True(t, out.Assessment.DangerFlag)
	assert.True(t, out.Alerted)
	assert.True(t, out.Report.OK())
	assert.Equal(t, 4, sink.count())
}

func TestPipeline_EmptyWindow(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, sink, nil)

	a := p.Assess(nil)
	assert.Equal(t, vitals.StatusNoData, a.Status)
	assert.False(t, a.HasData)
	assert.False(t, a.Gate)
	assert.True(t, a.Media.None())

	out, err := p.Ingest(context.Background(), ana, nil)
	require.NoError(t, err)
	assert.False(t, out.Alerted)

	s := p.GenerateSummary(context.Background(), nil, "Ana")
	assert.Equal(t, "No health data available for Ana.", s.Narrative)
	assert.Equal(t, vitals.SourceNoData, s.Source)
}

func TestPipeline_GateUsesLatestSampleOnly(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, sink, nil)
	old := sample(130, 40.0, 85)
	latest := sample(80, 36.8, 98)
	latest.Timestamp = old.Timestamp.Add(time.Minute)

	out, err := p.Ingest(context.Background(), ana, vitals.Window{old, latest})
	require.NoError(t, err)
	assert.False(t, out.Assessment.Gate)
	assert.Equal(t, vitals.StatusNormal, out.Assessment.Status)
	// Averages still reflect the earlier bad reading.
	assert.Equal(t, media.RespiratoryVideo, out.Assessment.Media)
	assert.Equal(t, 0, sink.count())
}

func TestPipeline_SuppressedAlert(t *testing.T) {
	sink := &recordingSink{}
	sup := &fixedSuppressor{allow: false}
	p := newTestPipeline(t, sink, sup)

	out, err := p.Ingest(context.Background(), ana, vitals.Window{sample(120, 37.0, 97)})
	require.NoError(t, err)
	assert.True(t, out.Assessment.Gate)
	assert.True(t, out.Suppressed)
	assert.False(t, out.Alerted)
	assert.Equal(t, 1, sup.calls)
	assert.Equal(t, 0, sink.count())
}

func TestPipeline_SuppressorErrorStillDispatches(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, sink, &fixedSuppressor{err: errors.New("redis down")})

	out, err := p.Ingest(context.Background(), ana, vitals.Window{sample(120, 37.0, 97)})
	require.NoError(t, err)
	assert.True(t, out.Alerted)
	assert.Equal(t, 4, sink.count())
}

func TestPipeline_CanceledContext(t *testing.T) {
	p := newTestPipeline(t, &recordingSink{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ingest(ctx, ana, vitals.Window{sample(58, 39.0, 90)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewPipeline(Deps{}) })
}
