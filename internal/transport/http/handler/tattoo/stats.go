package tattoo

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/inkgate/internal/storage"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// GenerationStats handles GET /api/generation-stats.
func (h *Handlers) GenerationStats(w http.ResponseWriter, r *http.Request) {
	if h.Log == nil {
		types.WriteError(w, http.StatusServiceUnavailable, types.ErrServer("generation log is disabled"))
		return
	}

	filter, err := parseStatsFilter(r)
	if err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(err.Error()))
		return
	}

	stats, err := h.Log.GetGenerationStats(r.Context(), filter)
	if err != nil {
		h.Logger.Error("failed to read generation stats", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("failed to get generation stats"))
		return
	}

	shared.WriteJSON(w, stats, http.StatusOK)
}

// parseStatsFilter creates a StatsFilter from query parameters. Dates are
// YYYY-MM-DD; end_date includes the whole day.
func parseStatsFilter(r *http.Request) (storage.StatsFilter, error) {
	filter := storage.StatsFilter{}

	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return filter, err
		}
		end := t.Add(24*time.Hour - time.Millisecond)
		filter.EndDate = &end
	}

	return filter, nil
}
