package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/response"
)

const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthResponse reports the state of the service and its dependencies.
// swagger:model HealthResponse
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewHealthHandler returns 200 when every check passes and 503 otherwise.
// Failure causes are logged, never returned to the caller.
func NewHealthHandler(checks map[string]HealthCheck, timeout time.Duration) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := HealthResponse{Status: healthOK}
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Log.Warnw("health check failed", "check", name, "err", err)
				resp.Status = healthUnavailable
				resp.Checks[name] = healthUnavailable
				continue
			}
			resp.Checks[name] = healthOK
		}

		code := http.StatusOK
		if resp.Status != healthOK {
			code = http.StatusServiceUnavailable
		}
		response.JSON(w, code, resp)
	}
}
