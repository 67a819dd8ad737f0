package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/config"
)

func storeListContext(e *echo.Echo, userID interface{}) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/user/stores?search=tea", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/user/stores")
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c
}

// The store list payload carries the caller's own rating, so two users
// issuing the same request must never resolve to the same cache entry.
func TestCacheKeyScopedToAuthenticatedUser(t *testing.T) {
	cfg := config.LoadCacheConfig()
	e := echo.New()

	first := cacheKeyFrom(cfg, storeListContext(e, float64(1)))
	second := cacheKeyFrom(cfg, storeListContext(e, float64(2)))
	if first == second {
		t.Fatalf("users 1 and 2 share cache key %q", first)
	}

	anon := cacheKeyFrom(cfg, storeListContext(e, nil))
	if anon == first || anon == second {
		t.Fatal("anonymous request shares a cache key with an authenticated user")
	}
}

func TestCacheKeyStableForSameUserAndQuery(t *testing.T) {
	cfg := config.LoadCacheConfig()
	e := echo.New()

	a := cacheKeyFrom(cfg, storeListContext(e, float64(7)))
	b := cacheKeyFrom(cfg, storeListContext(e, float64(7)))
	if a != b {
		t.Fatalf("key not stable for same user: %q vs %q", a, b)
	}
}
