package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"woolet-gate-service/domain"
	"woolet-gate-service/httperrors"
	"woolet-gate-service/request"
)

const (
	limitHeader     = "X-RateLimit-Limit"
	remainingHeader = "X-RateLimit-Remaining"
	resetHeader     = "X-RateLimit-Reset"

	storeUnavailableLabel = "Service temporarily unavailable"
)

type Admitter interface {
	Admit(ctx context.Context, identity string) (*domain.Decision, error)
}

// RateLimit guards every downstream handler with the sliding window
// admission check. A store failure denies the request: a broken limiter must
// never become an open one.
func RateLimit(admitter Admitter, limit int) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			identity := ctx.CallerIdentity()
			if identity == "" {
				identity = AnonymousIdentity
			}

			decision, err := admitter.Admit(ctx.Context(), identity)
			if err != nil {
				return httperrors.NewLabeled(
					http.StatusServiceUnavailable,
					storeUnavailableLabel,
					"",
					errors.WithMessagef(err, "rate limit: admit '%s'", identity),
				)
			}

			header := ctx.ResponseWriter().Header()
			header.Set(limitHeader, strconv.Itoa(limit))
			header.Set(remainingHeader, strconv.Itoa(decision.Remaining))
			header.Set(resetHeader, strconv.FormatInt(decision.ResetAt, 10))

			if !decision.Allowed {
				return httperrors.New(
					http.StatusTooManyRequests,
					fmt.Sprintf("request quota exhausted, retry after %d", decision.ResetAt),
					errors.Errorf("rate limit: quota exceeded for '%s'", identity),
				)
			}

			return next.Handle(ctx)
		})
	}
}
