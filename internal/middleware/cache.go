package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/amirabdullahi/Dinemate/internal/config"
)

// The browse listing is the hottest read in the service and changes
// only when a restaurant edits its profile, menu or sitting areas.
// Cached entries carry a generation number; restaurant-side writes
// bump the generation, which orphans every cached listing at once
// without scanning Redis for keys.

// cachedResponse is the envelope stored in Redis for a cache hit.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// responseTap forwards writes to the client while keeping a copy for
// the cache, up to limit bytes.  Oversized responses pass through
// uncached.
type responseTap struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	overflow bool
	limit    int
}

func (t *responseTap) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(b []byte) (int, error) {
	if !t.overflow {
		if t.buf.Len()+len(b) > t.limit {
			t.overflow = true
			t.buf.Reset()
		} else {
			t.buf.Write(b)
		}
	}
	return t.ResponseWriter.Write(b)
}

func generationKey(prefix string) string { return prefix + ":gen" }

// browseKey folds the current generation, the route and the query
// string into one key, so the same listing with different filters
// caches separately.
func browseKey(prefix string, gen int64, path, rawQuery string) string {
	sum := sha1.Sum([]byte(path + "?" + rawQuery))
	return fmt.Sprintf("%s:g%d:%x", prefix, gen, sum)
}

// NewBrowseCache returns middleware that serves GET responses for the
// browse listing out of Redis.  Only 200 responses are stored.  A nil
// Redis client or a disabled config yields a pass-through.
func NewBrowseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			gen, _ := rdb.Get(ctx, generationKey(cfg.Prefix)).Int64()
			key := browseKey(cfg.Prefix, gen, c.Path(), c.Request().URL.RawQuery)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cr cachedResponse
				if json.Unmarshal(raw, &cr) == nil && cr.Status != 0 {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(cr.Status, cr.ContentType, cr.Body)
				}
			}

			tap := &responseTap{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = tap
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if tap.status == http.StatusOK && !tap.overflow && tap.buf.Len() > 0 {
				cr := cachedResponse{
					Status:      tap.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        tap.buf.Bytes(),
				}
				if raw, err := json.Marshal(cr); err == nil {
					// The request context may already be done when the
					// handler returns; storing is best effort either way.
					_ = rdb.SetEx(context.Background(), key, raw, ttl).Err()
				}
			}
			return nil
		}
	}
}

// NewBrowseInvalidator returns the hook restaurant handlers call
// after a profile, menu or sitting-area write so diners stop seeing
// the stale listing.  With caching disabled the hook is a no-op.
func NewBrowseInvalidator(cfg config.CacheConfig, rdb *redis.Client) func(context.Context) {
	if !cfg.Enabled || rdb == nil {
		return func(context.Context) {}
	}
	return func(ctx context.Context) {
		_ = rdb.Incr(ctx, generationKey(cfg.Prefix)).Err()
	}
}
