package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"aeriesbridge/internal/config"
)

type contextKey string

// UsernameKey carries the authenticated username through the request
// context.
const UsernameKey contextKey = "username"

// UsernameFromContext extracts the authenticated username.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UsernameKey).(string)
	return name, ok
}

type accessClaims struct {
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer access token and attaches the
// username to the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w)
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		settings := config.Load()
		parsed, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(settings.SecretKey), nil
		})
		if err != nil || !parsed.Valid {
			unauthorized(w)
			return
		}
		claims, ok := parsed.Claims.(*accessClaims)
		if !ok || claims.Subject == "" {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
}
