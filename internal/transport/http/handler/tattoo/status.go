package tattoo

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mandalnilabja/inkgate/internal/provider"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/shared"
)

// providerStatus is the public view of one chain entry. It never carries
// credential values.
type providerStatus struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Configured bool   `json:"configured"`
}

// Status handles GET /api/tattoo-status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":     "Tattoo KI-API aktiv",
		"timestamp":  h.now().UTC().Format(time.RFC3339),
		"rate_limit": fmt.Sprintf("%d requests per %s per IP", h.RateMax, formatWindow(h.RateWindow)),
	}

	// Every known kind is reported so clients see a stable set of keys
	for _, kind := range provider.Kinds() {
		response[kind+"_configured"] = false
	}

	chain := h.Generator.Chain()
	providers := make([]providerStatus, 0, len(chain))
	for _, e := range chain {
		p := e.Provider
		if p.Configured() {
			response[p.Kind()+"_configured"] = true
		}
		providers = append(providers, providerStatus{Name: p.Name(), Kind: p.Kind(), Configured: p.Configured()})
	}
	response["providers"] = providers

	shared.WriteJSON(w, response, http.StatusOK)
}

// formatWindow renders whole minutes as "10 minutes" and anything else
// in Go duration syntax.
func formatWindow(d time.Duration) string {
	if d <= 0 || d%time.Minute != 0 {
		return d.String()
	}
	if m := int(d / time.Minute); m != 1 {
		return fmt.Sprintf("%d minutes", m)
	}
	return "1 minute"
}
