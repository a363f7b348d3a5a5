package handlers

//go:generate mockgen -source=session.go -destination=session_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-auth-manager/internal/jwt"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/middlewares"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
	"github.com/sbilibin2017/gw-auth-manager/internal/response"
)

// TokenRevoker defines the interface that the logout service must implement.
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *jwt.Claims) error
}

// NewLogoutHandler returns an HTTP handler revoking the presented token.
// It must run behind middlewares.AuthMiddleware.
// @Summary Logout
// @Description Revoke the bearer token until it expires.
// @Tags SimpleAuthManagerLogin
// @Security BearerAuth
// @Success 204 "Token revoked"
// @Failure 401 {object} models.HTTPExceptionResponse "Unauthorized"
// @Router /auth/logout [post]
func NewLogoutHandler(svc TokenRevoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			response.HTTPException(w, http.StatusUnauthorized, response.DetailNotAuthenticated)
			return
		}

		if err := svc.Revoke(r.Context(), claims); err != nil {
			logger.Log.Errorw("internal server error", "jti", claims.ID, "err", err)
			response.HTTPException(w, http.StatusInternalServerError, response.DetailInternalError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// NewMeHandler returns an HTTP handler describing the token subject.
// It must run behind middlewares.AuthMiddleware.
// @Summary Current user
// @Tags SimpleAuthManagerLogin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} models.HTTPExceptionResponse "Unauthorized"
// @Router /auth/me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			response.HTTPException(w, http.StatusUnauthorized, response.DetailNotAuthenticated)
			return
		}

		response.JSON(w, http.StatusOK, models.MeResponse{Username: claims.Subject, Role: claims.Role})
	}
}
