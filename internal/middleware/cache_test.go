package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/amirabdullahi/Dinemate/internal/config"
)

func TestBrowseKey(t *testing.T) {
	base := browseKey("dinemate:browse", 1, "/v1/restaurants", "cuisine=swahili")

	// Same inputs, same key.
	assert.Equal(t, base, browseKey("dinemate:browse", 1, "/v1/restaurants", "cuisine=swahili"))

	// Different filters cache separately.
	assert.NotEqual(t, base, browseKey("dinemate:browse", 1, "/v1/restaurants", "cuisine=indian"))

	// Bumping the generation orphans every prior key.
	assert.NotEqual(t, base, browseKey("dinemate:browse", 2, "/v1/restaurants", "cuisine=swahili"))
}

func TestResponseTapDropsOversizedBodies(t *testing.T) {
	rec := httptest.NewRecorder()
	tap := &responseTap{ResponseWriter: rec, status: http.StatusOK, limit: 8}

	_, err := tap.Write([]byte("0123456789"))
	assert.NoError(t, err)

	// Client still gets the full body; the cache copy is abandoned.
	assert.Equal(t, "0123456789", rec.Body.String())
	assert.True(t, tap.overflow)
	assert.Zero(t, tap.buf.Len())
}

func TestNewBrowseCacheDisabledPassesThrough(t *testing.T) {
	mw := NewBrowseCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestNewBrowseInvalidatorNilClientIsNoop(t *testing.T) {
	hook := NewBrowseInvalidator(config.CacheConfig{Enabled: true}, nil)
	assert.NotPanics(t, func() { hook(context.Background()) })
}
