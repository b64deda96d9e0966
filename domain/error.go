package domain

import (
	"github.com/pkg/errors"
)

var (
	// ErrStoreUnavailable marks an admission check that failed because the
	// shared store could not complete an operation. The caller must treat it
	// as a denial, never as an admission.
	ErrStoreUnavailable = errors.New("shared store is unavailable")

	ErrRateCacheMiss = errors.New("rate not found in cache")

	// ErrUpstreamUnavailable covers non-success provider statuses and
	// transport failures, ErrRateNotFound a successful response that omits
	// the requested target currency.
	ErrUpstreamUnavailable = errors.New("rate provider is unavailable")
	ErrRateNotFound        = errors.New("rate not found for currency pair")
)
