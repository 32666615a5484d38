package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeriesbridge/internal/middleware"
)

func TestMain(m *testing.M) {
	os.Setenv("SECRET_KEY", "test-secret-key")
	os.Exit(m.Run())
}

func protectedEcho() (http.Handler, *string) {
	var seen string
	h := middleware.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken("counselor1", 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	h, seen := protectedEcho()
	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "counselor1", *seen)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	h, _ := protectedEcho()
	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	h, _ := protectedEcho()
	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	token, err := CreateAccessToken("counselor1", -time.Minute)
	require.NoError(t, err)

	h, _ := protectedEcho()
	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseShareTokenRejectsGarbage(t *testing.T) {
	_, err := parseShareToken("")
	assert.Error(t, err)

	_, err = parseShareToken("not.a.token")
	assert.Error(t, err)
}
