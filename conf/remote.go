package conf

import (
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

const (
	defaultWindowMs       = 60000
	defaultMaxRequests    = 100
	defaultRateCacheInSec = 3600
)

type Remote struct {
	Redis     *Redis    `schema:"Redis settings,holds the admission windows and the rate cache"`
	Http      Http      `schema:"HTTP settings"`
	Logging   Logging   `schema:"Logging settings"`
	RateLimit RateLimit `schema:"Rate limiting settings,sliding window per caller identity"`
	Currency  Currency  `schema:"Currency rate resolution settings"`
}

type Http struct {
	MaxRequestBodySizeInMb int64 `valid:"required" schema:"Max request body size,in megabytes"`
}

type Logging struct {
	LogLevel         log.Level `schema:"Log level,request logging is written on debug level"`
	RequestLogEnable bool      `schema:"Enable request logging"`
	BodyLogEnable    bool      `schema:"Enable request and response body logging,request logging must be enabled"`
}

type RateLimit struct {
	MaxRequests         int    `schema:"Max requests per window,default 100"`
	WindowMs            int64  `schema:"Window duration,in milliseconds, default 60000"`
	TrustedUserIdHeader string `schema:"Trusted user id header,set by the authenticating proxy; preferred over client address for caller identity"`
}

type Currency struct {
	ProviderUrl         string `valid:"required" schema:"Rate provider base url,the FROM currency code is appended as the last path segment"`
	RequestTimeoutInSec int    `schema:"Provider request timeout,in seconds, default 15"`
	CacheTtlInSec       int    `schema:"Rate cache lifetime,in seconds, default 3600"`
}

type Redis struct {
	Address  string         `schema:"Address,required when sentinel is not specified"`
	Username string         `schema:"Username"`
	Password string         `schema:"Password"`
	Sentinel *RedisSentinel `schema:"Sentinel settings,required when address is not specified"`
}

type RedisSentinel struct {
	Addresses  []string `valid:"required" schema:"Cluster node addresses"`
	MasterName string   `valid:"required" schema:"Master name"`
	Username   string   `schema:"Sentinel username"`
	Password   string   `schema:"Sentinel password"`
}

func (r Remote) Validate() error {
	if r.Redis == nil {
		return errors.New("redis is required, both the admission window and the rate cache live in it")
	}
	if r.Redis.Sentinel == nil && r.Redis.Address == "" {
		return errors.New("invalid redis config. sentinel or address are required")
	}
	return nil
}

func (r RateLimit) Quota() (int, time.Duration) {
	maxRequests := r.MaxRequests
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}
	windowMs := r.WindowMs
	if windowMs <= 0 {
		windowMs = defaultWindowMs
	}
	return maxRequests, time.Duration(windowMs) * time.Millisecond
}

func (c Currency) CacheTtl() time.Duration {
	if c.CacheTtlInSec <= 0 {
		return defaultRateCacheInSec * time.Second
	}
	return time.Duration(c.CacheTtlInSec) * time.Second
}

func (c Currency) RequestTimeout() time.Duration {
	if c.RequestTimeoutInSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutInSec) * time.Second
}
