package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mandalnilabja/inkgate/internal/storage"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// loader fetches the value behind a cache key.
type loader func(ctx context.Context) (any, error)

// serveCached answers from the cache when possible and fills it on a
// miss. X-Cache tells which path was taken.
func (h *Handlers) serveCached(w http.ResponseWriter, r *http.Request, key string, load loader) {
	if h.Cache != nil {
		if body, found := h.Cache.Get(key); found {
			w.Header().Set("X-Cache", "HIT")
			shared.WriteJSONBytes(w, body, http.StatusOK)
			return
		}
	}

	value, err := load(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		types.WriteError(w, http.StatusNotFound, types.ErrNotFound("content not found"))
		return
	}
	if err != nil {
		h.Logger.Error("failed to load content", "key", key, "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("failed to load content"))
		return
	}

	body, err := json.Marshal(value)
	if err != nil {
		h.Logger.Error("failed to encode content", "key", key, "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("failed to encode content"))
		return
	}

	if h.Cache != nil {
		h.Cache.SetWithTTL(key, body, int64(len(body)), h.TTL)
		// Ristretto applies sets asynchronously
		h.Cache.Wait()
	}

	w.Header().Set("X-Cache", "MISS")
	shared.WriteJSONBytes(w, body, http.StatusOK)
}
