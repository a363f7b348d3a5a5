package middlewares

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middlewares

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-auth-manager/internal/jwt"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/response"
)

// Tokener defines the minimal interface needed by the middleware
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RevocationChecker reports whether a token id was revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware returns a middleware that validates the bearer token and
// stores its claims in the request context. revoked may be nil.
func AuthMiddleware(tokener Tokener, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.HTTPException(w, http.StatusUnauthorized, response.DetailNotAuthenticated)
				return
			}

			claims, err := tokener.GetClaims(ctx, tokenString)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.HTTPException(w, http.StatusUnauthorized, response.DetailInvalidToken)
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
				if err != nil {
					logger.Log.Errorw("failed to check token revocation", "jti", claims.ID, "err", err)
					response.HTTPException(w, http.StatusInternalServerError, response.DetailInternalError)
					return
				}
				if isRevoked {
					logger.Log.Infow("revoked token presented", "jti", claims.ID, "sub", claims.Subject)
					w.Header().Set("WWW-Authenticate", "Bearer")
					response.HTTPException(w, http.StatusUnauthorized, response.DetailRevokedToken)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}
