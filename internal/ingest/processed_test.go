package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vitalwatch/internal/monitor"
	"github.com/wolfman30/vitalwatch/internal/source"
	"github.com/wolfman30/vitalwatch/internal/vitals"
)

func newProcessedStore(t *testing.T) (*miniredis.Miniredis, *RedisProcessedStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisProcessedStore(client, time.Hour)
}

func TestRedisProcessedStore(t *testing.T) {
	mr, store := newProcessedStore(t)
	ctx := context.Background()

	first, err := store.Claim(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := store.Claim(ctx, "e-1")
	require.NoError(t, err)
	assert.False(t, again)
	assert.True(t, mr.Exists(processedKeyPrefix+"e-1"))

	require.NoError(t, store.Release(ctx, "e-1"))
	assert.False(t, mr.Exists(processedKeyPrefix+"e-1"))
	first, err = store.Claim(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, first)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(processedKeyPrefix+"e-1"))
}

func TestRedisProcessedStore_Unavailable(t *testing.T) {
	mr, store := newProcessedStore(t)
	mr.Close()

	_, err := store.Claim(context.Background(), "e-1")
	assert.Error(t, err)
}

// reentrantEvaluator handles the same event again while the first evaluation
// is still in flight, as a second worker would on a concurrent redelivery.
type reentrantEvaluator struct {
	Evaluator
	handler  *Handler
	evt      Event
	inner    monitor.Outcome
	innerErr error
}

func (r *reentrantEvaluator) Ingest(ctx context.Context, patient vitals.Patient, w vitals.Window) (monitor.Outcome, error) {
	r.inner, r.innerErr = r.handler.Handle(ctx, r.evt)
	return r.Evaluator.Ingest(ctx, patient, w)
}

func TestHandler_ClaimsEventBeforeEvaluating(t *testing.T) {
	store, sink, base := newFixture(t)
	_, processed := newProcessedStore(t)
	evt := Event{ID: "e-7", PatientID: "p-1", Sample: critical()}

	re := &reentrantEvaluator{Evaluator: base.evaluator, evt: evt}
	h := NewHandler(store, re, nil, nil).WithProcessedStore(processed)
	re.handler = h

	out, err := h.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.True(t, out.Alerted)

	require.NoError(t, re.innerErr)
	assert.False(t, re.inner.Alerted, "in-flight duplicate must not alert")
	assert.Equal(t, 4, sink.count())
}

func TestHandler_ReleasesClaimOnTransientFailure(t *testing.T) {
	store, sink, h := newFixture(t)
	mr, processed := newProcessedStore(t)
	evt := Event{ID: "e-9", PatientID: "p-1", Sample: critical()}

	broken := NewHandler(brokenStore{}, h.evaluator, nil, nil).WithProcessedStore(processed)
	_, err := broken.Handle(context.Background(), evt)
	require.Error(t, err)
	assert.False(t, Permanent(err))
	assert.False(t, mr.Exists(processedKeyPrefix+"e-9"), "transient failure releases the claim")

	retry := NewHandler(store, h.evaluator, nil, nil).WithProcessedStore(processed)
	out, err := retry.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.True(t, out.Alerted)
	assert.Equal(t, 4, sink.count())
}

func TestHandler_KeepsClaimOnPermanentFailure(t *testing.T) {
	_, _, h := newFixture(t)
	mr, processed := newProcessedStore(t)
	h.WithProcessedStore(processed)

	_, err := h.Handle(context.Background(), Event{ID: "e-10", PatientID: "ghost", Sample: critical()})
	require.ErrorIs(t, err, source.ErrPatientNotFound)
	assert.True(t, mr.Exists(processedKeyPrefix+"e-10"))
}

func TestHandler_ClaimErrorStillEvaluates(t *testing.T) {
	_, sink, h := newFixture(t)
	mr, processed := newProcessedStore(t)
	h.WithProcessedStore(processed)
	mr.Close()

	out, err := h.Handle(context.Background(), Event{ID: "e-11", PatientID: "p-1", Sample: critical()})
	require.NoError(t, err)
	assert.True(t, out.Alerted)
	assert.Equal(t, 4, sink.count())
}

func TestHandler_SkipsRedeliveredEvent(t *testing.T) {
	_, sink, h := newFixture(t)
	_, store := newProcessedStore(t)
	h.WithProcessedStore(store)
	evt := Event{ID: "e-42", PatientID: "p-1", Sample: critical()}

	out, err := h.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.True(t, out.Alerted)

	out, err = h.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.False(t, out.Alerted)
	assert.Equal(t, 4, sink.count(), "duplicate delivery does not re-alert")
}

func TestNewRedisProcessedStore_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisProcessedStore(nil, time.Minute))
}
