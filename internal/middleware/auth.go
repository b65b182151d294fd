package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zlovtnik/homeswift/pkg/auth"
)

type contextKey string

const (
	contextKeyUser      contextKey = "user"
	contextKeyClaims    contextKey = "claims"
	contextKeyRequestID contextKey = "request_id"

	// HTTP header constants
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

func writeAuthError(w http.ResponseWriter, status int, body string) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// RequireRole validates the bearer token and requires its role claim to equal role.
// Token validation is delegated to pkg/auth.
func RequireRole(jwtSecret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized,
					`{"success":false,"error":{"code":"UNAUTHORIZED","message":"missing authorization header"}}`)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeAuthError(w, http.StatusUnauthorized,
					`{"success":false,"error":{"code":"UNAUTHORIZED","message":"invalid authorization header format"}}`)
				return
			}

			claims, err := auth.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized,
					`{"success":false,"error":{"code":"UNAUTHORIZED","message":"invalid token"}}`)
				return
			}
			if !claims.HasRole(role) {
				writeAuthError(w, http.StatusForbidden,
					`{"success":false,"error":{"code":"FORBIDDEN","message":"insufficient role"}}`)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUser, claims.Name())
			ctx = context.WithValue(ctx, contextKeyClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyUser).(string); ok {
		return v
	}
	return ""
}

// GetUserClaims retrieves the full claims from context
func GetUserClaims(ctx context.Context) *auth.Claims {
	if v, ok := ctx.Value(contextKeyClaims).(*auth.Claims); ok {
		return v
	}
	return nil
}

// GetRequestID retrieves the request id assigned by LoggingMiddleware
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return v
	}
	return ""
}
