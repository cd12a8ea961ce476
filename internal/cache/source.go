package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// Config holds the dependencies of a CachingSource.
type Config struct {
	Source ports.CandleSource
	Store  ports.CandleStore
	TTL    time.Duration
	Logger ports.Logger
	// FetchTimeout bounds a shared fetch, which no single caller cancels. Defaults to 30s.
	FetchTimeout time.Duration
}

// Stats counts cache outcomes since creation.
type Stats struct {
	Hits   int64
	Misses int64
	Shared int64
}

// CachingSource is a ports.CandleSource that serves fresh entries from a
// store and collapses concurrent misses for the same key into one fetch.
type CachingSource struct {
	source       ports.CandleSource
	store        ports.CandleStore
	ttl          time.Duration
	fetchTimeout time.Duration
	logger       ports.Logger
	group        singleflight.Group

	hits, misses, shared atomic.Int64
}

// NewCachingSource creates a new caching source.
func NewCachingSource(cfg Config) (*CachingSource, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for caching source")
	}
	if cfg.Source == nil || cfg.Store == nil {
		return nil, fmt.Errorf("%w: caching source needs a source and a store", ports.ErrConfigurationError)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("%w: cache ttl must be positive", ports.ErrConfigurationError)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	return &CachingSource{
		source:       cfg.Source,
		store:        cfg.Store,
		ttl:          cfg.TTL,
		fetchTimeout: cfg.FetchTimeout,
		logger:       cfg.Logger,
	}, nil
}

// Key builds the cache key of a request.
func Key(symbol, interval string, limit int) string {
	return fmt.Sprintf("%s|%s|%d", symbol, interval, limit)
}

// GetKlines implements ports.CandleSource.
func (c *CachingSource) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	op := "CachingSource.GetKlines"
	key := Key(symbol, interval, limit)

	klines, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, op+": cache read failed, fetching from source", map[string]interface{}{"key": key, "error": err.Error()})
	} else if ok {
		c.hits.Add(1)
		return klines, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.misses.Add(1)
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		fetched, err := c.source.GetKlines(fetchCtx, symbol, interval, limit)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(fetchCtx, key, fetched, c.ttl); err != nil {
			c.logger.Warn(fetchCtx, op+": cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return fetched, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrContextCanceled, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.shared.Add(1)
		}
		return append([]*domain.Kline(nil), res.Val.([]*domain.Kline)...), nil
	}
}

// Stats returns the cache counters.
func (c *CachingSource) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Shared: c.shared.Load()}
}
