package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"woolet-gate-service/domain"
)

type RateCache interface {
	Get(ctx context.Context, from string, to string) (decimal.Decimal, error)
	Set(ctx context.Context, from string, to string, rate decimal.Decimal, ttl time.Duration) error
}

type RateSource interface {
	LatestRates(ctx context.Context, base string) (*domain.RateTable, error)
}

// Currency resolves exchange rates through the cache. Concurrent misses for
// one pair are coalesced into a single upstream fetch.
type Currency struct {
	cache    RateCache
	source   RateSource
	cacheTtl time.Duration
	group    singleflight.Group
}

func NewCurrency(cache RateCache, source RateSource, cacheTtl time.Duration) *Currency {
	return &Currency{
		cache:    cache,
		source:   source,
		cacheTtl: cacheTtl,
	}
}

func (s *Currency) Resolve(ctx context.Context, from string, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, err := s.cache.Get(ctx, from, to)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, domain.ErrRateCacheMiss) {
		return decimal.Zero, errors.WithMessage(err, "rate cache get")
	}

	value, err, _ := s.group.Do(fmt.Sprintf("%s:%s", from, to), func() (any, error) {
		return s.fetch(ctx, from, to)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return value.(decimal.Decimal), nil //nolint:forcetypeassert
}

func (s *Currency) fetch(ctx context.Context, from string, to string) (decimal.Decimal, error) {
	table, err := s.source.LatestRates(ctx, from)
	if err != nil {
		return decimal.Zero, errors.WithMessagef(err, "latest rates for base '%s'", from)
	}

	rate, ok := table.Rates[to]
	if !ok {
		return decimal.Zero, errors.WithMessagef(domain.ErrRateNotFound, "provider response for base '%s' has no '%s'", from, to)
	}

	err = s.cache.Set(ctx, from, to, rate, s.cacheTtl)
	if err != nil {
		return decimal.Zero, errors.WithMessage(err, "rate cache set")
	}

	return rate, nil
}
