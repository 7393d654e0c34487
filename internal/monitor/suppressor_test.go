package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSuppressor_CooldownWindow(t *testing.T) {
	mr, client := newRedis(t)
	sup := NewRedisSuppressor(client, 10*time.Minute)
	require.NotNil(t, sup)
	ctx := context.Background()

	ok, err := sup.Allow(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sup.Allow(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, ok, "second alert inside cooldown is suppressed")

	ok, err = sup.Allow(ctx, "p-2")
	require.NoError(t, err)
	assert.True(t, ok, "cooldown is per patient")

	mr.FastForward(11 * time.Minute)
	ok, err = sup.Allow(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSuppressor_Reset(t *testing.T) {
	_, client := newRedis(t)
	sup := NewRedisSuppressor(client, time.Hour)
	ctx := context.Background()

	_, err := sup.Allow(ctx, "p-1")
	require.NoError(t, err)
	require.NoError(t, sup.Reset(ctx, "p-1"))

	ok, err := sup.Allow(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSuppressor_Unavailable(t *testing.T) {
	mr, client := newRedis(t)
	sup := NewRedisSuppressor(client, time.Minute)
	mr.Close()

	_, err := sup.Allow(context.Background(), "p-1")
	assert.Error(t, err)
}

func TestNewRedisSuppressor_Disabled(t *testing.T) {
	_, client := newRedis(t)
	assert.Nil(t, NewRedisSuppressor(client, 0))
	assert.Nil(t, NewRedisSuppressor(nil, time.Minute))
}
