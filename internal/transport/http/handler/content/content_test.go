package content

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mandalnilabja/inkgate/internal/storage"
)

type fakeStore struct {
	pages     map[string]*storage.Page
	portfolio []*storage.PortfolioItem
	crew      []*storage.CrewMember
	contact   *storage.ContactInfo
	err       error
	reads     int
}

func (s *fakeStore) GetPage(_ context.Context, slug string) (*storage.Page, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.pages[slug]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) ListPortfolio(context.Context) ([]*storage.PortfolioItem, error) {
	s.reads++
	return s.portfolio, s.err
}

func (s *fakeStore) ListCrew(context.Context) ([]*storage.CrewMember, error) {
	s.reads++
	return s.crew, s.err
}

func (s *fakeStore) GetContact(context.Context) (*storage.ContactInfo, error) {
	s.reads++
	if s.contact == nil {
		return nil, storage.ErrNotFound
	}
	return s.contact, s.err
}

func newStore() *fakeStore {
	return &fakeStore{
		pages: map[string]*storage.Page{
			"home": {ID: "page-home", Title: "Ink Brothers", Slug: "home", Blocks: []storage.ContentBlock{
				{Type: storage.BlockText, Text: "UNSERE ARBEIT"},
				{Type: storage.BlockPortfolio, Ref: "portfolio-1"},
				{Type: storage.BlockPortfolio, Ref: "portfolio-gone"},
				{Type: storage.BlockCrew, Ref: "crew-1"},
				{Type: storage.BlockContact},
			}},
		},
		portfolio: []*storage.PortfolioItem{{ID: "portfolio-1", Title: "Sleeve"}},
		crew:      []*storage.CrewMember{{ID: "crew-1", Name: "David", Specialties: []string{"Color"}}},
		contact:   &storage.ContactInfo{Address: "Watterstrasse 10, 8105 Regensdorf"},
	}
}

func newHandlers(t *testing.T, store *fakeStore) *Handlers {
	t.Helper()
	cache, err := NewCache(1 << 20)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(cache.Close)
	return New(store, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func getPage(h *Handlers, slug string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/content/pages/"+slug, nil)
	req.SetPathValue("slug", slug)
	rec := httptest.NewRecorder()
	h.GetPage(rec, req)
	return rec
}

func TestGetPage_ResolvesBlocks(t *testing.T) {
	h := newHandlers(t, newStore())
	rec := getPage(h, "home")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page PageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Blocks) != 4 {
		t.Fatalf("expected dangling block to be dropped, got %d blocks", len(page.Blocks))
	}
	if page.Blocks[1].Portfolio == nil || page.Blocks[1].Portfolio.Title != "Sleeve" {
		t.Errorf("portfolio block not resolved: %+v", page.Blocks[1])
	}
	if page.Blocks[2].Crew == nil || page.Blocks[2].Crew.Name != "David" {
		t.Errorf("crew block not resolved: %+v", page.Blocks[2])
	}
	if page.Blocks[3].Contact == nil {
		t.Errorf("contact block not resolved: %+v", page.Blocks[3])
	}
}

func TestGetPage_NotFound(t *testing.T) {
	h := newHandlers(t, newStore())
	rec := getPage(h, "missing")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCache_HitAfterMiss(t *testing.T) {
	store := newStore()
	h := newHandlers(t, store)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"portfolio", h.ListPortfolio},
		{"crew", h.ListCrew},
		{"contact", h.GetContact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := httptest.NewRecorder()
			tt.handler(first, httptest.NewRequest(http.MethodGet, "/api/content/"+tt.name, nil))
			if first.Header().Get("X-Cache") != "MISS" {
				t.Errorf("expected MISS, got %q", first.Header().Get("X-Cache"))
			}

			reads := store.reads
			second := httptest.NewRecorder()
			tt.handler(second, httptest.NewRequest(http.MethodGet, "/api/content/"+tt.name, nil))
			if second.Header().Get("X-Cache") != "HIT" {
				t.Errorf("expected HIT, got %q", second.Header().Get("X-Cache"))
			}
			if store.reads != reads {
				t.Error("expected cached response not to read the store")
			}
			if first.Body.String() != second.Body.String() {
				t.Error("cached body differs from original")
			}
		})
	}
}

func TestStoreFailure(t *testing.T) {
	store := newStore()
	store.err = errors.New("database is locked")
	h := newHandlers(t, store)

	rec := httptest.NewRecorder()
	h.ListPortfolio(rec, httptest.NewRequest(http.MethodGet, "/api/content/portfolio", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("errors must not be cached")
	}
}

func TestWithoutCache(t *testing.T) {
	store := newStore()
	h := New(store, nil, nil)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ListCrew(rec, httptest.NewRequest(http.MethodGet, "/api/content/crew", nil))
		if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
			t.Fatalf("request %d: status %d, X-Cache %q", i, rec.Code, rec.Header().Get("X-Cache"))
		}
	}
	if store.reads != 2 {
		t.Errorf("expected 2 store reads, got %d", store.reads)
	}
}
