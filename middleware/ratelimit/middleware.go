package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/invitegate/config"
)

type Config struct {
	Store          Store
	Rate           int
	Period         time.Duration
	Burst          int
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
	Now            func() time.Time
}

func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}

	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Rate
	}

	if cfg.Store == nil {
		cfg.Store = NewMemoryStore(cfg.Rate, cfg.Period, cfg.Burst)
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, remaining, retryAfter := cfg.Store.Allow(cfg.KeyGenerator(c), cfg.Now())

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				header.Set(echo.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				return cfg.OnLimitReached(c)
			}

			return next(c)
		}
	}
}

func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	return "rate_limit:" + realIP
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}

// ForStore limits with a store built by ProvideRateLimitStore. A nil store means rate
// limiting is disabled and yields a pass-through middleware.
func ForStore(store Store, cfg *config.RateLimitConfig) echo.MiddlewareFunc {
	if store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return Middleware(&Config{
		Store:  store,
		Rate:   cfg.Rate,
		Period: cfg.Period,
		Burst:  cfg.Burst,
	})
}
