package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"woolet-gate-service/domain"
)

// RateCache stores resolved exchange rates in the shared store. Entries
// expire passively via the store's TTL mechanism, there is no eviction
// sweep.
type RateCache struct {
	cli redis.UniversalClient
}

func NewRateCache(cli redis.UniversalClient) RateCache {
	return RateCache{
		cli: cli,
	}
}

func (r RateCache) Get(ctx context.Context, from string, to string) (decimal.Decimal, error) {
	key := r.key(from, to)
	value, err := r.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, domain.ErrRateCacheMiss
	}
	if err != nil {
		return decimal.Zero, errors.WithMessagef(err, "get '%s'", key)
	}

	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.WithMessagef(err, "parse cached rate '%s'", key)
	}

	return rate, nil
}

func (r RateCache) Set(ctx context.Context, from string, to string, rate decimal.Decimal, ttl time.Duration) error {
	key := r.key(from, to)
	err := r.cli.Set(ctx, key, rate.String(), ttl).Err()
	if err != nil {
		return errors.WithMessagef(err, "set '%s'", key)
	}
	return nil
}

func (r RateCache) key(from string, to string) string {
	return fmt.Sprintf("rate:%s:%s", from, to)
}
