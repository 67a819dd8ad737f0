package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-ratings/internal/utils"
)

const secret = "middleware-test-secret"

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, h(c))
	return rec
}

func bearerFor(t *testing.T, userID uint64, role string, ttlMin int) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, userID, role, ttlMin)
	require.NoError(t, err)
	return "Bearer " + at.Token
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := runProtected(t, "", JWTAuth(secret))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec := runProtected(t, "Bearer not.a.jwt", JWTAuth(secret))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	rec := runProtected(t, bearerFor(t, 1, "USER", -1), JWTAuth(secret))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("another-secret", 1, "USER", 60)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+at.Token, JWTAuth(secret))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", bearerFor(t, 9, "OWNER", 60))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID, gotRole interface{}
	h := JWTAuth(secret)(func(c echo.Context) error {
		gotID = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 9, gotID)
	require.Equal(t, "OWNER", gotRole)
}

func TestRequireRoleExactMatchOnly(t *testing.T) {
	// A perfectly valid USER token must still be rejected by an ADMIN gate.
	rec := runProtected(t, bearerFor(t, 2, "USER", 60), JWTAuth(secret), RequireRole("ADMIN"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// No hierarchy: ADMIN does not pass an OWNER-only gate either.
	rec = runProtected(t, bearerFor(t, 3, "ADMIN", 60), JWTAuth(secret), RequireRole("OWNER"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = runProtected(t, bearerFor(t, 4, "ADMIN", 60), JWTAuth(secret), RequireRole("ADMIN"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleMissingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole("USER")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}
