package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/monitor"
	"github.com/wolfman30/vitalwatch/internal/source"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSuppressor returns the alert cooldown, or nil when ALERT_COOLDOWN is
// unset or Redis is missing.
func BuildSuppressor(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) monitor.Suppressor {
	if cfg == nil || cfg.AlertCooldown <= 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	sup := monitor.NewRedisSuppressor(redisClient, cfg.AlertCooldown)
	if sup == nil {
		logger.Warn("ALERT_COOLDOWN set but redis is unavailable; alerts will not be suppressed")
		return nil
	}
	logger.Info("alert cooldown enabled", "cooldown", cfg.AlertCooldown.String())
	return sup
}

// BuildStore picks Postgres when DATABASE_URL is set, else the fixture file,
// else an empty in-memory store. The returned close func is never nil.
func BuildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (source.Store, func(), error) {
	if cfg == nil {
		return nil, func() {}, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, func() {}, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		logger.Info("using postgres patient store")
		return source.NewPostgresStore(pool), pool.Close, nil
	}

	if path := strings.TrimSpace(cfg.FixtureFile); path != "" {
		store, err := source.LoadFixture(path)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("using fixture patient store", "path", path)
		return store, func() {}, nil
	}

	logger.Warn("no DATABASE_URL or FIXTURE_FILE configured; patient store is empty")
	return source.NewMemoryStore(), func() {}, nil
}
