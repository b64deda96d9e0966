package assembly

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"woolet-gate-service/conf"
	"woolet-gate-service/handler"
	"woolet-gate-service/middleware"
	"woolet-gate-service/repository"
	"woolet-gate-service/service"

	"github.com/txix-open/isp-kit/log"
)

type Locator struct {
	logger log.Logger
}

func NewLocator(logger log.Logger) Locator {
	return Locator{
		logger: logger,
	}
}

// Handler assembles the middleware chain and the business endpoints. The
// redis client is borrowed, its lifecycle belongs to the Assembly.
func (l Locator) Handler(config conf.Remote, redisCli redis.UniversalClient) http.Handler {
	maxRequests, window := config.RateLimit.Quota()
	admission := service.NewAdmission(repository.NewWindow(redisCli), maxRequests, window)

	rateProvider := repository.NewRateProvider(config.Currency.ProviderUrl, config.Currency.RequestTimeout())
	currency := service.NewCurrency(repository.NewRateCache(redisCli), rateProvider, config.Currency.CacheTtl())
	currencyHandler := handler.NewCurrency(currency)

	endpoints := map[string]middleware.Handler{
		"GET /api/currency/rate":    middleware.HandlerFunc(currencyHandler.Rate),
		"GET /api/currency/convert": middleware.HandlerFunc(currencyHandler.Convert),
	}

	mux := http.NewServeMux()
	for pattern, endpointHandler := range endpoints {
		chained := middleware.Chain(
			endpointHandler,
			middleware.RequestId(),
			middleware.Logger(l.logger, config.Logging.RequestLogEnable, config.Logging.BodyLogEnable),
			middleware.ErrorHandler(l.logger),
			middleware.CallerIdentity(),
			middleware.RateLimit(admission, maxRequests),
		)
		entrypoint := middleware.Entrypoint(
			config.Http.MaxRequestBodySizeInMb*1024*1024, //nolint:gomnd
			chained,
			config.RateLimit.TrustedUserIdHeader,
			l.logger,
		)
		mux.Handle(pattern, entrypoint)
	}

	return mux
}
