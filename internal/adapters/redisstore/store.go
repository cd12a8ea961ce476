// Package redisstore implements ports.CandleStore on Redis so several scanner
// instances can share fetched candles.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// kv is the subset of redis.Cmdable the store uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Logger   ports.Logger
}

// Store is a Redis backed candle store. Values are JSON encoded series with
// a native Redis expiry.
type Store struct {
	client kv
	closer func() error
	prefix string
	logger ports.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Redis store")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", ports.ErrConfigurationError)
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w: %w", cfg.Addr, ports.ErrCacheUnavailable, err)
	}
	cfg.Logger.Info(ctx, "Redis candle store connected", map[string]interface{}{"addr": cfg.Addr, "db": cfg.DB})

	s := newStore(client, cfg.Prefix, cfg.Logger)
	s.closer = client.Close
	return s, nil
}

func newStore(client kv, prefix string, logger ports.Logger) *Store {
	if prefix == "" {
		prefix = "smc:klines"
	}
	return &Store{client: client, prefix: prefix, logger: logger}
}

func (s *Store) key(k string) string {
	return s.prefix + ":" + k
}

// Get returns the cached series for key.
func (s *Store) Get(ctx context.Context, key string) ([]*domain.Kline, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w: %w", key, ports.ErrCacheUnavailable, err)
	}
	var klines []*domain.Kline
	if err := json.Unmarshal(data, &klines); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		s.logger.Warn(ctx, "Discarding undecodable cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		_ = s.client.Del(ctx, s.key(key)).Err()
		return nil, false, nil
	}
	return klines, true, nil
}

// Set stores klines under key for ttl. A non-positive ttl deletes the key.
func (s *Store) Set(ctx context.Context, key string, klines []*domain.Kline, ttl time.Duration) error {
	if ttl <= 0 {
		if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w: %w", key, ports.ErrCacheUnavailable, err)
		}
		return nil
	}
	data, err := json.Marshal(klines)
	if err != nil {
		return fmt.Errorf("encode klines for %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w: %w", key, ports.ErrCacheUnavailable, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
