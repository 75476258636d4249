package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/amirabdullahi/Dinemate/internal/config"
)

func TestRateKeySeparatesRoutes(t *testing.T) {
	e := echo.New()

	ctxFor := func(target, path string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.RemoteAddr = "203.0.113.7:50000"
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return c
	}

	login := rateKey("dinemate:rl", ctxFor("/v1/auth/login", "/v1/auth/login"))
	register := rateKey("dinemate:rl", ctxFor("/v1/restaurant/register", "/v1/restaurant/register"))

	// Emptying the login bucket must not block restaurant signup from
	// the same address.
	assert.NotEqual(t, login, register)
	assert.Contains(t, login, "203.0.113.7")
	assert.Contains(t, login, "POST /v1/auth/login")
}

func TestNewTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
