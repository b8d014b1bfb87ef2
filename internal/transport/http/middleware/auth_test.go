package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSecrets map[string]string

func (s staticSecrets) APISecret(_ context.Context, applicationID string) string {
	return s[applicationID]
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func authedHandler(secrets SecretSource) (http.Handler, *AppClaims) {
	captured := &AppClaims{}
	h := AppAuth(secrets)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := ClaimsFromContext(r.Context()); ok {
			*captured = *c
		}
		w.WriteHeader(http.StatusOK)
	}))
	return h, captured
}

func TestAppAuth_ValidTokenInjectsClaims(t *testing.T) {
	secrets := staticSecrets{"app-1": "secret-1"}
	h, captured := authedHandler(secrets)

	token := signToken(t, jwt.SigningMethodHS256, "secret-1", jwt.MapClaims{
		"application_id": "app-1",
		"sub":            "wallet-user-9",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "app-1", captured.ApplicationID)
	assert.Equal(t, "wallet-user-9", captured.Subject)
}

func TestAppAuth_MissingHeader(t *testing.T) {
	h, _ := authedHandler(staticSecrets{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppAuth_WrongSecret(t *testing.T) {
	h, _ := authedHandler(staticSecrets{"app-1": "secret-1"})

	token := signToken(t, jwt.SigningMethodHS256, "not-the-secret", jwt.MapClaims{
		"application_id": "app-1",
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppAuth_UnknownApplication(t *testing.T) {
	h, _ := authedHandler(staticSecrets{})

	token := signToken(t, jwt.SigningMethodHS256, "anything", jwt.MapClaims{
		"application_id": "ghost-app",
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppAuth_ExpiredToken(t *testing.T) {
	h, _ := authedHandler(staticSecrets{"app-1": "secret-1"})

	token := signToken(t, jwt.SigningMethodHS256, "secret-1", jwt.MapClaims{
		"application_id": "app-1",
		"exp":            time.Now().Add(-time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
