package tattoo

import (
	"math"
	"net/http"

	"github.com/mandalnilabja/inkgate/internal/generation"
	"github.com/mandalnilabja/inkgate/internal/metrics"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware/ratelimit"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// RateLimited answers generate requests over the client's budget. The
// status stays 200; the wait message travels in the body.
func (h *Handlers) RateLimited(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	requestID := middleware.GetRequestID(r.Context())

	attrs := []any{"request_id", requestID, "client", ratelimit.HashKey(h.ClientKey(r))}
	if d, ok := ratelimit.DecisionFrom(r.Context()); ok {
		attrs = append(attrs, "count", d.Count, "limit", d.Limit)
	}
	h.Logger.Info("tattoo request rate limited", attrs...)

	minutes := int(math.Ceil(h.RateWindow.Minutes()))
	writeResponse(w, http.StatusOK, types.GenerateResponse{
		Image:      h.Fallbacks.Image(),
		IsFallback: true,
		Message:    generation.RateLimitedMessage(minutes),
	})
	h.finish(outcomeRecord{
		requestID: requestID,
		outcome:   metrics.OutcomeRateLimited,
		status:    http.StatusOK,
		fallback:  true,
		start:     start,
	})
}
