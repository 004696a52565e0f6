package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellogate/internal/jwt"
)

func newHelloRouter(t *testing.T) (chi.Router, *jwt.Issuer) {
	t.Helper()
	iss, err := jwt.NewIssuer("hellogate", "hellogate-frontend", "", time.Hour, 168*time.Hour)
	require.NoError(t, err)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := chi.NewRouter()
	(&HelloHandler{Issuer: iss, Now: func() time.Time { return fixed }}).Register(r)
	return r, iss
}

func TestHelloRequiresToken(t *testing.T) {
	r, _ := newHelloRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestHelloRejectsGarbageToken(t *testing.T) {
	r, _ := newHelloRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHelloRejectsRefreshToken(t *testing.T) {
	r, iss := newHelloRouter(t)
	pair, err := iss.MintPair(jwt.Subject{Key: "ada@example.com", Email: "ada@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHelloGreetsWithTime(t *testing.T) {
	r, iss := newHelloRouter(t)
	pair, err := iss.MintPair(jwt.Subject{Key: "ada@example.com", Email: "ada@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Hello ada@example.com! Time: 2025-06-01T12:00:00Z", body["message"])
}
