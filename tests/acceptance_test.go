package tests

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/test"
	"woolet-gate-service/assembly"
	"woolet-gate-service/conf"
	"woolet-gate-service/domain"
)

type GateTestSuite struct {
	suite.Suite
}

type gateEnv struct {
	srv           *httptest.Server
	provider      *httptest.Server
	mr            *miniredis.Miniredis
	providerCalls *int32
}

func (s *GateTestSuite) newEnv(test *test.Test, maxRequests int) gateEnv {
	require := test.Assert()

	mr := miniredis.RunT(s.T())
	redisCli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() {
		_ = redisCli.Close()
	})

	providerCalls := new(int32)
	provider := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(providerCalls, 1)
		writer.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(writer).Encode(domain.RateTable{
			Base: "USD",
			Date: "2026-08-23",
			Rates: map[string]decimal.Decimal{
				"KZT": decimal.RequireFromString("450.0"),
				"EUR": decimal.RequireFromString("0.92"),
			},
		})
		require.NoError(err)
	}))
	s.T().Cleanup(provider.Close)

	config := conf.Remote{
		Redis: &conf.Redis{Address: mr.Addr()},
		Http:  conf.Http{MaxRequestBodySizeInMb: 1},
		Logging: conf.Logging{
			LogLevel:         log.DebugLevel,
			RequestLogEnable: true,
		},
		RateLimit: conf.RateLimit{
			MaxRequests:         maxRequests,
			WindowMs:            60000,
			TrustedUserIdHeader: "x-user-id",
		},
		Currency: conf.Currency{
			ProviderUrl:   provider.URL,
			CacheTtlInSec: 3600,
		},
	}

	locator := assembly.NewLocator(test.Logger())
	srv := httptest.NewServer(locator.Handler(config, redisCli))
	s.T().Cleanup(srv.Close)

	return gateEnv{srv: srv, provider: provider, mr: mr, providerCalls: providerCalls}
}

func (s *GateTestSuite) TestConvertHappyPath() {
	test, require := test.New(s.T())
	env := s.newEnv(test, 100)

	cli := httpcli.New()
	resp := domain.ConvertResponse{}
	_, err := cli.Get(env.srv.URL + "/api/currency/convert?from=USD&to=KZT&amount=2").
		Header("x-user-id", "42").
		JsonResponseBody(&resp).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues("USD", resp.From)
	require.EqualValues("KZT", resp.To)
	require.True(resp.Result.Equal(decimal.RequireFromString("900.0")))
	require.EqualValues(1, atomic.LoadInt32(env.providerCalls))
}

func (s *GateTestSuite) TestRateIsServedFromCache() {
	test, require := test.New(s.T())
	env := s.newEnv(test, 100)

	cli := httpcli.New()
	for range 3 {
		resp := domain.RateResponse{}
		_, err := cli.Get(env.srv.URL + "/api/currency/rate?from=USD&to=KZT").
			JsonResponseBody(&resp).
			StatusCodeToError().
			Do(context.Background())
		require.NoError(err)
		require.True(resp.Rate.Equal(decimal.RequireFromString("450.0")))
	}
	require.EqualValues(1, atomic.LoadInt32(env.providerCalls))
}

func (s *GateTestSuite) TestQuotaExceeded() {
	test, require := test.New(s.T())
	env := s.newEnv(test, 3)

	expectedRemaining := []string{"2", "1", "0"}
	for _, remaining := range expectedRemaining {
		resp := s.get(env, "/api/currency/rate?from=USD&to=KZT", "limited")
		require.EqualValues(http.StatusOK, resp.StatusCode)
		require.EqualValues("3", resp.Header.Get("X-RateLimit-Limit"))
		require.EqualValues(remaining, resp.Header.Get("X-RateLimit-Remaining"))
		require.NotEmpty(resp.Header.Get("X-RateLimit-Reset"))
	}

	for range 2 {
		resp := s.get(env, "/api/currency/rate?from=USD&to=KZT", "limited")
		require.EqualValues(http.StatusTooManyRequests, resp.StatusCode)
		body := s.readBody(resp)
		require.EqualValues("Too Many Requests", body["error"])
		require.NotEmpty(body["message"])
	}

	// quotas are partitioned per identity
	resp := s.get(env, "/api/currency/rate?from=USD&to=KZT", "someone-else")
	require.EqualValues(http.StatusOK, resp.StatusCode)
}

func (s *GateTestSuite) TestStoreFailureFailsClosed() {
	test, require := test.New(s.T())
	env := s.newEnv(test, 100)

	env.mr.Close()

	resp := s.get(env, "/api/currency/rate?from=USD&to=KZT", "42")
	require.EqualValues(http.StatusServiceUnavailable, resp.StatusCode)
	body := s.readBody(resp)
	require.EqualValues("Service temporarily unavailable", body["error"])
	// the request never reached the currency handler
	require.EqualValues(0, atomic.LoadInt32(env.providerCalls))
}

func (s *GateTestSuite) TestUnknownCurrency() {
	test, require := test.New(s.T())
	env := s.newEnv(test, 100)

	resp := s.get(env, "/api/currency/rate?from=USD&to=XXX", "42")
	require.EqualValues(http.StatusBadRequest, resp.StatusCode)
}

func (s *GateTestSuite) TestProviderDown() {
	test, require := test.New(s.T())
	env := s.newEnv(test, 100)

	env.provider.Close()

	resp := s.get(env, "/api/currency/rate?from=USD&to=KZT", "42")
	require.EqualValues(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *GateTestSuite) get(env gateEnv, path string, userId string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, env.srv.URL+path, nil)
	s.Require().NoError(err)
	req.Header.Set("x-user-id", userId)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func (s *GateTestSuite) readBody(resp *http.Response) map[string]any {
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	body := map[string]any{}
	s.Require().NoError(json.Unmarshal(data, &body))
	return body
}

func TestGateTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(GateTestSuite))
}
