package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/txix-open/isp-kit/json"
	"woolet-gate-service/domain"
	"woolet-gate-service/httperrors"
	"woolet-gate-service/request"
)

type CurrencyResolver interface {
	Resolve(ctx context.Context, from string, to string) (decimal.Decimal, error)
}

type Currency struct {
	resolver CurrencyResolver
}

func NewCurrency(resolver CurrencyResolver) Currency {
	return Currency{
		resolver: resolver,
	}
}

// Rate responds with the current exchange rate for a pair.
func (h Currency) Rate(ctx *request.Context) error {
	from, to, err := currencyPair(ctx)
	if err != nil {
		return err
	}

	rate, err := h.resolver.Resolve(ctx.Context(), from, to)
	if err != nil {
		return resolveError(from, to, err)
	}

	return writeJson(ctx.ResponseWriter(), domain.RateResponse{
		From: from,
		To:   to,
		Rate: rate,
	})
}

// Convert responds with an amount converted between two currencies. The
// amount defaults to 1 when omitted.
func (h Currency) Convert(ctx *request.Context) error {
	from, to, err := currencyPair(ctx)
	if err != nil {
		return err
	}

	amount := decimal.NewFromInt(1)
	if raw := ctx.Request().URL.Query().Get("amount"); raw != "" {
		amount, err = decimal.NewFromString(raw)
		if err != nil {
			return httperrors.New(
				http.StatusBadRequest,
				"amount must be a decimal number",
				errors.WithMessagef(err, "convert: parse amount '%s'", raw),
			)
		}
	}

	rate, err := h.resolver.Resolve(ctx.Context(), from, to)
	if err != nil {
		return resolveError(from, to, err)
	}

	return writeJson(ctx.ResponseWriter(), domain.ConvertResponse{
		From:   from,
		To:     to,
		Rate:   rate,
		Amount: amount,
		Result: amount.Mul(rate),
	})
}

func currencyPair(ctx *request.Context) (string, string, error) {
	query := ctx.Request().URL.Query()
	from := normalizeCode(query.Get("from"))
	to := normalizeCode(query.Get("to"))
	if from == "" || to == "" {
		return "", "", httperrors.New(
			http.StatusBadRequest,
			"from and to query parameters are required",
			errors.New("currency: missing currency codes"),
		)
	}
	return from, to, nil
}

func resolveError(from string, to string, err error) error {
	switch {
	case errors.Is(err, domain.ErrRateNotFound):
		return httperrors.New(
			http.StatusBadRequest,
			"unknown currency pair "+from+"/"+to,
			err,
		)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return httperrors.New(
			http.StatusServiceUnavailable,
			"rate provider is unavailable",
			err,
		)
	default:
		return errors.WithMessage(err, "currency: resolve rate")
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func writeJson(w http.ResponseWriter, body any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(body)
}
