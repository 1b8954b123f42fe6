package collector

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"DayTrader/internal/model"
)

const quoteKeyPrefix = "quote:"

// Compile-time check to ensure CachedFetcher implements Fetcher
var _ Fetcher = (*CachedFetcher)(nil)

// CachedFetcher keeps latest closes in Redis for a short TTL so a portfolio
// or leaderboard view does not spend one provider call per holding.
// Series requests always go to the provider.
type CachedFetcher struct {
	next   Fetcher
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewCachedFetcher wraps next with a Redis-backed quote cache.
func NewCachedFetcher(next Fetcher, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, client: client, ttl: ttl, log: logger}
}

func (c *CachedFetcher) Name() string { return c.next.Name() + "+redis" }

func (c *CachedFetcher) FetchSeries(ctx context.Context, symbol, interval string, outputsize int) ([]model.OHLCV, error) {
	return c.next.FetchSeries(ctx, symbol, interval, outputsize)
}

func (c *CachedFetcher) FetchLatestClose(ctx context.Context, symbol string) (float64, error) {
	key := quoteKeyPrefix + model.NormalizeSymbol(symbol)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if price, perr := strconv.ParseFloat(val, 64); perr == nil && price > 0 {
			return price, nil
		}
		c.log.Warn("discarding bad cached quote", zap.String("key", key), zap.String("value", val))
	case !errors.Is(err, redis.Nil):
		// Cache outage must not block trading.
		c.log.Warn("quote cache read failed", zap.String("key", key), zap.Error(err))
	}

	price, err := c.next.FetchLatestClose(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, key, strconv.FormatFloat(price, 'f', -1, 64), c.ttl).Err(); err != nil {
		c.log.Warn("quote cache write failed", zap.String("key", key), zap.Error(err))
	}
	return price, nil
}

// Close releases the Redis connection.
func (c *CachedFetcher) Close() error {
	return c.client.Close()
}
