package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/inkgate/internal/version"
)

// RootStatus returns JSON status and version information at /.
func (h *Handlers) RootStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"name":     "inkgate",
		"version":  version.Version,
		"status":   "running",
		"generate": "/api/generate-tattoo",
		"health":   "/api/health",
		"content":  "/api/content",
	}
	shared.WriteJSON(w, response, http.StatusOK)
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "active",
		"app":    "inkgate",
		"uptime": time.Since(h.StartTime).Round(time.Second).String(),
	}
	shared.WriteJSON(w, response, http.StatusOK)
}
