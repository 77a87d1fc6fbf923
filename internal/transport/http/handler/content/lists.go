package content

import (
	"context"
	"net/http"
)

// ListPortfolio handles GET /api/content/portfolio.
func (h *Handlers) ListPortfolio(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "portfolio", func(ctx context.Context) (any, error) {
		items, err := h.Store.ListPortfolio(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"items": items}, nil
	})
}

// ListCrew handles GET /api/content/crew.
func (h *Handlers) ListCrew(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "crew", func(ctx context.Context) (any, error) {
		crew, err := h.Store.ListCrew(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"crew": crew}, nil
	})
}

// GetContact handles GET /api/content/contact.
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "contact", func(ctx context.Context) (any, error) {
		return h.Store.GetContact(ctx)
	})
}
