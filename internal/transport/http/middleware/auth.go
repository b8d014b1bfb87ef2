package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// AppClaims identifies the calling application and, optionally, the end
// subject (wallet-app user or ledger account) the token was issued for.
type AppClaims struct {
	ApplicationID string
	Subject       string
}

// SecretSource resolves the HS256 signing secret for an application id.
// An empty return means the application is unknown.
type SecretSource interface {
	APISecret(ctx context.Context, applicationID string) string
}

// AppAuth validates the Bearer token against the calling application's API
// secret. Tokens carry their application id in the application_id claim; the
// secret for verification is looked up from that claim, so each application
// signs with its own key.
func AppAuth(secrets SecretSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, `{"error":"missing or invalid authorization header"}`, http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				appID, _ := claims["application_id"].(string)
				secret := secrets.APISecret(r.Context(), appID)
				if secret == "" {
					return nil, jwt.ErrTokenUnverifiable
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			appID, _ := claims["application_id"].(string)
			sub, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), ClaimsKey, &AppClaims{ApplicationID: appID, Subject: sub})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the application claims from the request context.
func ClaimsFromContext(ctx context.Context) (*AppClaims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*AppClaims)
	return c, ok
}
