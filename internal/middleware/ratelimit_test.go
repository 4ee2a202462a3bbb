package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/config"
)

func TestRateKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/booking/verify", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/booking/verify")
	c.Set(ctxUserID, "u1")

	cases := map[string]string{
		"ip":            "rl:checkout:10.0.0.7",
		"user":          "rl:checkout:u1",
		"ip_user":       "rl:checkout:10.0.0.7:u1",
		"ip_user_route": "rl:checkout:10.0.0.7:u1:POST /api/booking/verify",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		if got := rateKey(cfg, "checkout", c); got != want {
			t.Errorf("%s: got %q, want %q", strategy, got, want)
		}
	}
}

func TestLimiterWithoutRedisPassesThrough(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{Enabled: true}, nil, zap.NewNop())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	mw := l.Limit("api", config.Bucket{Capacity: 1})
	for i := 0; i < 3; i++ {
		if err := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c); err != nil {
			t.Fatal(err)
		}
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}
