package middleware

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"woolet-gate-service/request"
)

func Entrypoint(maxReqBodySize int64, next Handler, trustedUserIdHeader string, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(writer, req.Body, maxReqBodySize)
		ctx := request.NewContext(req, writer, req.URL.Path)
		if trustedUserIdHeader != "" {
			userId := strings.TrimSpace(req.Header.Get(trustedUserIdHeader))
			if userId != "" {
				ctx.SetUserId(userId)
			}
		}
		err := next.Handle(ctx)
		if err != nil {
			logger.Error(req.Context(), errors.WithMessage(err, "uncaught error"))
		}
	})
}
