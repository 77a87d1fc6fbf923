package content

import (
	"context"
	"net/http"

	"github.com/mandalnilabja/inkgate/internal/storage"
)

// Block is a page block with its reference replaced by the item itself.
type Block struct {
	Type      string                 `json:"type"`
	Text      string                 `json:"text,omitempty"`
	Portfolio *storage.PortfolioItem `json:"portfolioItem,omitempty"`
	Crew      *storage.CrewMember    `json:"crewMember,omitempty"`
	Contact   *storage.ContactInfo   `json:"contactInfo,omitempty"`
}

// PageResponse is a page ready for rendering.
type PageResponse struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Slug   string  `json:"slug"`
	Blocks []Block `json:"blocks"`
}

// GetPage handles GET /api/content/pages/{slug}.
func (h *Handlers) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	h.serveCached(w, r, "page:"+slug, func(ctx context.Context) (any, error) {
		return h.resolvePage(ctx, slug)
	})
}

// resolvePage loads a page and inlines the items its blocks reference.
// Blocks pointing at items that no longer exist are dropped.
func (h *Handlers) resolvePage(ctx context.Context, slug string) (*PageResponse, error) {
	page, err := h.Store.GetPage(ctx, slug)
	if err != nil {
		return nil, err
	}

	portfolio, err := h.Store.ListPortfolio(ctx)
	if err != nil {
		return nil, err
	}
	crew, err := h.Store.ListCrew(ctx)
	if err != nil {
		return nil, err
	}

	items := make(map[string]*storage.PortfolioItem, len(portfolio))
	for _, p := range portfolio {
		items[p.ID] = p
	}
	members := make(map[string]*storage.CrewMember, len(crew))
	for _, c := range crew {
		members[c.ID] = c
	}

	var contact *storage.ContactInfo
	resp := &PageResponse{ID: page.ID, Title: page.Title, Slug: page.Slug, Blocks: []Block{}}

	for _, b := range page.Blocks {
		block := Block{Type: b.Type, Text: b.Text}
		switch b.Type {
		case storage.BlockPortfolio:
			block.Portfolio = items[b.Ref]
			if block.Portfolio == nil {
				h.Logger.Warn("dropping dangling page block", "slug", slug, "type", b.Type, "ref", b.Ref)
				continue
			}
		case storage.BlockCrew:
			block.Crew = members[b.Ref]
			if block.Crew == nil {
				h.Logger.Warn("dropping dangling page block", "slug", slug, "type", b.Type, "ref", b.Ref)
				continue
			}
		case storage.BlockContact:
			if contact == nil {
				if contact, err = h.Store.GetContact(ctx); err != nil {
					return nil, err
				}
			}
			block.Contact = contact
		}
		resp.Blocks = append(resp.Blocks, block)
	}
	return resp, nil
}
