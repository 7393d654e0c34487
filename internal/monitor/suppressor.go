package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Suppressor decides whether an alert for a patient may go out now.
type Suppressor interface {
	Allow(ctx context.Context, patientID string) (bool, error)
}

const suppressKeyPrefix = "vitalwatch:alert:cooldown:"

// RedisSuppressor allows one alert per patient per cooldown window.
type RedisSuppressor struct {
	client   *redis.Client
	cooldown time.Duration
	now      func() time.Time
}

// NewRedisSuppressor returns nil when the client is missing or cooldown is not
// positive, which leaves every gate trip free to dispatch.
func NewRedisSuppressor(client *redis.Client, cooldown time.Duration) *RedisSuppressor {
	if client == nil || cooldown <= 0 {
		return nil
	}
	return &RedisSuppressor{client: client, cooldown: cooldown, now: time.Now}
}

func (s *RedisSuppressor) key(patientID string) string {
	return suppressKeyPrefix + patientID
}

// Allow claims the cooldown slot for the patient. Only the first caller inside
// the window gets true.
func (s *RedisSuppressor) Allow(ctx context.Context, patientID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(patientID), s.now().UTC().Format(time.RFC3339), s.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("monitor: claim alert cooldown: %w", err)
	}
	return ok, nil
}

// Reset clears a patient's cooldown, e.g. after the clinician acknowledges.
func (s *RedisSuppressor) Reset(ctx context.Context, patientID string) error {
	if err := s.client.Del(ctx, s.key(patientID)).Err(); err != nil {
		return fmt.Errorf("monitor: reset alert cooldown: %w", err)
	}
	return nil
}
