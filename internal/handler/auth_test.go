package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-ratings/internal/config"
	"github.com/iliyamo/store-ratings/internal/repository"
	"github.com/iliyamo/store-ratings/internal/utils"
)

func testCfg() config.Config {
	return config.Config{JWTSecret: "handler-test-secret", AccessTTLMin: 60, BcryptCost: 4}
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	return NewAuthHandler(testCfg(), repository.NewUserRepo(db)), mock, func() { db.Close() }
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))

	var resp map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestSignupCreatesUser(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, address, role)")).
		WithArgs("Alice", "alice@x.com", sqlmock.AnyArg(), "1 Main St", repository.RoleUser).
		WillReturnResult(sqlmock.NewResult(7, 1))

	rec, resp := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"name":"Alice","email":"Alice@X.com","password":"pw","address":"1 Main St","role":"USER"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "User created", resp["message"])
	require.EqualValues(t, 7, resp["userId"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupMissingFields(t *testing.T) {
	h, _, done := newAuthHandler(t)
	defer done()

	rec, resp := doJSON(t, h.Signup, http.MethodPost, "/signup", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, resp["error"], "required")
}

func TestSignupUnknownRoleFallsBackToUser(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Bob", "bob@x.com", sqlmock.AnyArg(), "", repository.RoleUser).
		WillReturnResult(sqlmock.NewResult(8, 1))

	rec, _ := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"name":"Bob","email":"bob@x.com","password":"pw","role":"wizard"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func userRows(t *testing.T, id uint64, email, password, role string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "address", "role", "created_at", "updated_at"}).
		AddRow(id, "Some User", email, hash, "addr", role, now, now)
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	mock.ExpectQuery("SELECT id,name,email,password_hash,address,role").
		WithArgs("ghost@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, resp := doJSON(t, h.Login, http.MethodPost, "/login", `{"email":"ghost@x.com","password":"pw"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", resp["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	mock.ExpectQuery("SELECT id,name,email,password_hash,address,role").
		WithArgs("alice@x.com").
		WillReturnRows(userRows(t, 1, "alice@x.com", "right-pw", repository.RoleUser))

	rec, resp := doJSON(t, h.Login, http.MethodPost, "/login", `{"email":"alice@x.com","password":"wrong-pw"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", resp["error"])
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	mock.ExpectQuery("SELECT id,name,email,password_hash,address,role").
		WithArgs("olivia@x.com").
		WillReturnRows(userRows(t, 3, "olivia@x.com", "right-pw", repository.RoleOwner))

	rec, resp := doJSON(t, h.Login, http.MethodPost, "/login", `{"email":"olivia@x.com","password":"right-pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Login successful", resp["message"])

	// The returned token must decode with the server secret and embed the
	// identity unchanged.
	tokenStr, ok := resp["token"].(string)
	require.True(t, ok)
	tok, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (interface{}, error) {
		return []byte(testCfg().JWTSecret), nil
	})
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	require.EqualValues(t, 3, claims["sub"])
	require.Equal(t, repository.RoleOwner, claims["role"])
}
