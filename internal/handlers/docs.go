package handlers

import (
	"net/http"

	"github.com/sbilibin2017/gw-auth-manager/internal/docs"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/response"
)

// NewOpenAPIJSONHandler serves the API contract as shipped.
func NewOpenAPIJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.JSON())
	}
}

// NewOpenAPIYAMLHandler serves the API contract rendered as YAML.
func NewOpenAPIYAMLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := docs.YAML()
		if err != nil {
			logger.Log.Errorw("failed to render openapi yaml", "err", err)
			response.HTTPException(w, http.StatusInternalServerError, response.DetailInternalError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)
	}
}
