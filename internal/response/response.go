// Package response writes the JSON bodies shared by handlers and middlewares.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
)

// Error details returned to clients.
const (
	DetailCredentialsRequired = "Username and password must be provided"
	DetailInvalidCredentials  = "Invalid credentials"
	DetailInternalError       = "Internal server error"
	DetailNotAuthenticated    = "Not authenticated"
	DetailInvalidToken        = "Invalid or expired token"
	DetailRevokedToken        = "Token has been revoked"
	DetailTooManyRequests     = "Too many requests"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "status", code, "err", err)
	}
}

// HTTPException writes an HTTPExceptionResponse with the given status.
func HTTPException(w http.ResponseWriter, code int, detail any) {
	JSON(w, code, models.HTTPExceptionResponse{Detail: detail})
}
