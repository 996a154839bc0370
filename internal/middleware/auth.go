// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civic-report/report-assistant/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// CallerKey is the context key for the authenticated caller.
	CallerKey ContextKey = "caller"
)

// Claims represents JWT claims. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Area string `json:"area"`
}

// Auth creates JWT authentication middleware.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := WithCaller(r.Context(), model.CallerContext{
				UserID:    claims.Subject,
				Role:      claims.Role,
				AreaLabel: claims.Area,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCaller returns a context carrying caller.
func WithCaller(ctx context.Context, caller model.CallerContext) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// GetCaller gets the authenticated caller from context.
func GetCaller(ctx context.Context) (model.CallerContext, bool) {
	caller, ok := ctx.Value(CallerKey).(model.CallerContext)
	return caller, ok
}

// GetUserID gets user ID from context.
func GetUserID(ctx context.Context) string {
	caller, _ := GetCaller(ctx)
	return caller.UserID
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
