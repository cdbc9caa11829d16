package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/invitegate/config"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "test")
}

func TestMiddleware(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("basic rate limiting", func(t *testing.T) {
		cfg := &Config{
			Rate:   1,
			Period: time.Minute,
			Burst:  1,
			Now:    func() time.Time { return now },
			KeyGenerator: func(c echo.Context) string {
				return "test-key"
			},
		}
		middleware := Middleware(cfg)
		e := echo.New()

		rec1 := httptest.NewRecorder()
		if err := middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec1.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec1.Code)
		}
		if got := rec1.Header().Get("X-RateLimit-Limit"); got != "1" {
			t.Errorf("expected limit header 1, got %q", got)
		}

		rec2 := httptest.NewRecorder()
		err := middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec2))
		httpErr, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("expected echo.HTTPError, got %T", err)
		}
		if httpErr.Code != http.StatusTooManyRequests {
			t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, httpErr.Code)
		}
		if got := rec2.Header().Get(echo.HeaderRetryAfter); got != "60" {
			t.Errorf("expected Retry-After 60, got %q", got)
		}
	})

	t.Run("separate clients by IP", func(t *testing.T) {
		middleware := Middleware(&Config{Rate: 1, Burst: 1, Now: func() time.Time { return now }})
		e := echo.New()

		for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set(echo.HeaderXRealIP, ip)
			if err := middleware(okHandler)(e.NewContext(req, httptest.NewRecorder())); err != nil {
				t.Errorf("client %s should not be limited: %v", ip, err)
			}
		}
	})

	t.Run("custom limit handler", func(t *testing.T) {
		middleware := Middleware(&Config{
			Rate:  1,
			Burst: 1,
			Now:   func() time.Time { return now },
			OnLimitReached: func(c echo.Context) error {
				return c.String(http.StatusTooManyRequests, "")
			},
		})
		e := echo.New()

		_ = middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder()))
		rec := httptest.NewRecorder()
		if err := middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
		}
	})
}

func TestDefaultKeyGenerator(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")

	if got := DefaultKeyGenerator(e.NewContext(req, httptest.NewRecorder())); got != "rate_limit:203.0.113.9" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestForStore(t *testing.T) {
	e := echo.New()
	cfg := &config.RateLimitConfig{Rate: 1, Period: time.Minute, Burst: 1}

	t.Run("nil store passes through", func(t *testing.T) {
		middleware := ForStore(nil, cfg)
		for i := 0; i < 3; i++ {
			if err := middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	})

	t.Run("store limits", func(t *testing.T) {
		store := NewMemoryStore(cfg.Rate, cfg.Period, cfg.Burst)
		defer store.Close()
		middleware := ForStore(store, cfg)

		_ = middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder()))
		if err := middleware(okHandler)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())); err == nil {
			t.Error("expected the second request to be limited")
		}
	})
}
