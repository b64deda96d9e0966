package middleware

import (
	"strings"

	"woolet-gate-service/request"
)

const (
	forwardedForHeader = "X-Forwarded-For"
	realIpHeader       = "X-Real-IP"

	// AnonymousIdentity buckets requests that carry no user id and no usable
	// client address.
	AnonymousIdentity = "anonymous"
)

// CallerIdentity assigns the partitioning key for admission control:
// authenticated user id when present, else the client network address.
func CallerIdentity() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			ctx.SetCallerIdentity(extractIdentity(ctx))
			return next.Handle(ctx)
		})
	}
}

func extractIdentity(ctx *request.Context) string {
	if userId := ctx.UserId(); userId != "" {
		return "user:" + userId
	}

	r := ctx.Request()
	forwardedFor := strings.TrimSpace(r.Header.Get(forwardedForHeader))
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return "ip:" + addr
		}
	}

	realIp := strings.TrimSpace(r.Header.Get(realIpHeader))
	if realIp != "" {
		return "ip:" + realIp
	}

	return AnonymousIdentity
}
