package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"woolet-gate-service/domain"
)

// RateProvider fetches the latest quote table for a base currency from the
// external provider. Timeouts are enforced here so a slow upstream turns
// into a typed failure instead of an unbounded wait.
type RateProvider struct {
	cli     *httpcli.Client
	baseUrl string
	timeout time.Duration
}

func NewRateProvider(baseUrl string, timeout time.Duration) RateProvider {
	return RateProvider{
		cli:     httpcli.New(),
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		timeout: timeout,
	}
}

func (r RateProvider) LatestRates(ctx context.Context, base string) (*domain.RateTable, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	table := domain.RateTable{}
	_, err := r.cli.Get(fmt.Sprintf("%s/%s", r.baseUrl, base)).
		JsonResponseBody(&table).
		StatusCodeToError().
		Do(ctx)
	if err != nil {
		return nil, errors.WithMessagef(domain.ErrUpstreamUnavailable, "fetch rates for base '%s': %v", base, err)
	}

	return &table, nil
}
