package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/test"
	"woolet-gate-service/domain"
	"woolet-gate-service/middleware"
	"woolet-gate-service/request"
)

type stubAdmitter struct {
	decision *domain.Decision
	err      error
	calls    int
}

func (s *stubAdmitter) Admit(ctx context.Context, identity string) (*domain.Decision, error) {
	s.calls++
	return s.decision, s.err
}

func serve(t *testing.T, admitter middleware.Admitter) (*httptest.ResponseRecorder, *int) {
	t.Helper()
	testInstance, _ := test.New(t)

	nextCalls := 0
	next := middleware.HandlerFunc(func(ctx *request.Context) error {
		nextCalls++
		ctx.ResponseWriter().WriteHeader(http.StatusOK)
		return nil
	})
	chained := middleware.Chain(
		next,
		middleware.ErrorHandler(testInstance.Logger()),
		middleware.CallerIdentity(),
		middleware.RateLimit(admitter, 100),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/currency/rate", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	rec := httptest.NewRecorder()
	err := chained.Handle(request.NewContext(req, rec, req.URL.Path))
	require.NoError(t, err)

	return rec, &nextCalls
}

func responseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	return body
}

func TestAllowedRequestPassesThroughWithHeaders(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	admitter := &stubAdmitter{decision: &domain.Decision{Allowed: true, Remaining: 41, ResetAt: 1767200460}}
	rec, nextCalls := serve(t, admitter)

	require.EqualValues(1, *nextCalls)
	require.EqualValues(http.StatusOK, rec.Code)
	require.EqualValues("100", rec.Header().Get("X-RateLimit-Limit"))
	require.EqualValues("41", rec.Header().Get("X-RateLimit-Remaining"))
	require.EqualValues("1767200460", rec.Header().Get("X-RateLimit-Reset"))
}

func TestDeniedRequestNeverReachesDownstream(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	admitter := &stubAdmitter{decision: &domain.Decision{Allowed: false, Remaining: 0, ResetAt: 1767200460}}
	rec, nextCalls := serve(t, admitter)

	require.EqualValues(0, *nextCalls)
	require.EqualValues(http.StatusTooManyRequests, rec.Code)
	require.EqualValues("0", rec.Header().Get("X-RateLimit-Remaining"))

	body := responseBody(t, rec)
	require.EqualValues("Too Many Requests", body["error"])
	require.NotEmpty(body["message"])
}

func TestStoreFailureFailsClosed(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	admitter := &stubAdmitter{err: errors.WithMessage(domain.ErrStoreUnavailable, "connection refused")}
	rec, nextCalls := serve(t, admitter)

	require.EqualValues(0, *nextCalls)
	require.EqualValues(http.StatusServiceUnavailable, rec.Code)

	body := responseBody(t, rec)
	require.EqualValues("Service temporarily unavailable", body["error"])
	require.NotContains(body, "message")
}
