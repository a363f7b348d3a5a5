package middlewares

import (
	"context"

	"github.com/sbilibin2017/gw-auth-manager/internal/jwt"
)

// contextKey is an unexported type for keys in context
type contextKey int

const (
	requestIDKey contextKey = iota
	claimsKey
)

// GetRequestIDFromContext returns the request id set by LoggingMiddleware.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetClaimsFromContext retrieves the token claims from the context. Returns nil if not present.
func GetClaimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return claims
}

// WithClaims stores claims in the context.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
