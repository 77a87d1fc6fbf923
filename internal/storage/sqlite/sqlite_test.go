package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mandalnilabja/inkgate/internal/storage/models"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()

	storage, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func testSeed() *models.ContentSeed {
	return &models.ContentSeed{
		Contact: models.ContactInfo{
			Address:      "Watterstrasse 10, 8105 Regensdorf",
			Phone:        "+41 44 000 00 00",
			Email:        "info@example.ch",
			OpeningHours: "Mo-Fr: 10:00-19:00",
		},
		Portfolio: []models.PortfolioItem{
			{ID: "portfolio-1", Title: "Sleeve", Year: "2024", Artist: "A", Category: "Black & Grey", Image: "a.jpg", Alt: "sleeve"},
			{ID: "portfolio-2", Title: "Rose", Year: "2023", Artist: "B", Category: "Fineline", Image: "b.jpg", Alt: "rose"},
		},
		Crew: []models.CrewMember{
			{ID: "crew-1", Name: "B", Role: "Fineline", Experience: "5 Jahre", Quote: "q", Specialties: []string{"Fineline", "Dotwork"}, Image: "c.jpg", Alt: "b"},
			{ID: "crew-2", Name: "C", Role: "Color", Experience: "2 Jahre", Quote: "q", Image: "d.jpg", Alt: "c"},
		},
		Pages: []models.Page{
			{ID: "page-home", Title: "Home", Slug: "home", Blocks: []models.ContentBlock{
				{Type: models.BlockText, Text: "UNSERE ARBEIT"},
				{Type: models.BlockPortfolio, Ref: "portfolio-2"},
				{Type: models.BlockContact},
			}},
		},
	}
}

func TestSeedContent(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	wrote, err := storage.SeedContent(ctx, testSeed())
	if err != nil {
		t.Fatalf("SeedContent failed: %v", err)
	}
	if !wrote {
		t.Fatal("expected empty store to be seeded")
	}

	// A second seed must leave the existing content alone
	changed := testSeed()
	changed.Contact.Phone = "changed"
	wrote, err = storage.SeedContent(ctx, changed)
	if err != nil {
		t.Fatalf("second SeedContent failed: %v", err)
	}
	if wrote {
		t.Error("expected non-empty store to be left alone")
	}

	contact, err := storage.GetContact(ctx)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if contact.Phone == "changed" {
		t.Error("contact was overwritten by second seed")
	}
	if contact.Address != "Watterstrasse 10, 8105 Regensdorf" {
		t.Errorf("unexpected address %q", contact.Address)
	}
}

func TestGetPage(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	if _, err := storage.SeedContent(ctx, testSeed()); err != nil {
		t.Fatalf("SeedContent failed: %v", err)
	}

	page, err := storage.GetPage(ctx, "home")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if page.Title != "Home" || len(page.Blocks) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Blocks[1].Ref != "portfolio-2" {
		t.Errorf("expected block order preserved, got %+v", page.Blocks)
	}

	if _, err := storage.GetPage(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPortfolioAndCrew(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	// Empty store lists nothing rather than failing
	items, err := storage.ListPortfolio(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %v, %v", items, err)
	}

	if _, err := storage.SeedContent(ctx, testSeed()); err != nil {
		t.Fatalf("SeedContent failed: %v", err)
	}

	items, err = storage.ListPortfolio(ctx)
	if err != nil {
		t.Fatalf("ListPortfolio failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "portfolio-1" {
		t.Errorf("expected seed order, got %+v", items)
	}

	crew, err := storage.ListCrew(ctx)
	if err != nil {
		t.Fatalf("ListCrew failed: %v", err)
	}
	if len(crew) != 2 {
		t.Fatalf("expected 2 crew members, got %d", len(crew))
	}
	if len(crew[0].Specialties) != 2 || crew[0].Specialties[1] != "Dotwork" {
		t.Errorf("unexpected specialties %v", crew[0].Specialties)
	}
	if crew[1].Specialties == nil {
		t.Error("expected empty specialties to decode as empty slice")
	}
}

func TestGetContact_NotSeeded(t *testing.T) {
	storage := setupTestDB(t)
	if _, err := storage.GetContact(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerationLogAndStats(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	logs := []*models.GenerationLog{
		{RequestID: "r1", Provider: "SD v1-5", Outcome: "generated", StatusCode: 200, Attempts: 1, DurationMs: 1000, CreatedAt: base},
		{RequestID: "r2", Provider: "SD v1-5", Outcome: "generated", StatusCode: 200, Attempts: 1, DurationMs: 3000, CreatedAt: base.Add(time.Minute)},
		{RequestID: "r3", Outcome: "fallback", StatusCode: 200, IsFallback: true, Attempts: 2, DurationMs: 2000, CreatedAt: base.Add(2 * time.Minute)},
		{RequestID: "r4", Outcome: "invalid", StatusCode: 400, IsFallback: true, CreatedAt: base.Add(24 * time.Hour)},
	}
	for _, l := range logs {
		if err := storage.LogGeneration(ctx, l); err != nil {
			t.Fatalf("LogGeneration failed: %v", err)
		}
		if l.ID == "" {
			t.Error("expected ID to be generated")
		}
	}

	stats, err := storage.GetGenerationStats(ctx, models.StatsFilter{})
	if err != nil {
		t.Fatalf("GetGenerationStats failed: %v", err)
	}
	if stats.TotalRequests != 4 || stats.FallbackCount != 2 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if stats.AvgDurationMs != 1500 {
		t.Errorf("expected avg 1500, got %v", stats.AvgDurationMs)
	}
	if len(stats.Breakdown) != 3 {
		t.Fatalf("expected 3 breakdown rows, got %d", len(stats.Breakdown))
	}
	// Requests without a provider sort first
	if stats.Breakdown[0].Provider != "" || stats.Breakdown[0].Outcome != "fallback" {
		t.Errorf("unexpected first row %+v", stats.Breakdown[0])
	}
	if last := stats.Breakdown[2]; last.Provider != "SD v1-5" || last.Count != 2 {
		t.Errorf("unexpected provider row %+v", last)
	}

	end := base.Add(time.Hour)
	stats, err = storage.GetGenerationStats(ctx, models.StatsFilter{EndDate: &end})
	if err != nil {
		t.Fatalf("GetGenerationStats with filter failed: %v", err)
	}
	if stats.TotalRequests != 3 {
		t.Errorf("expected 3 requests before %v, got %d", end, stats.TotalRequests)
	}
}

func TestClosedStorage(t *testing.T) {
	storage := setupTestDB(t)
	if err := storage.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := storage.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	ctx := context.Background()
	if _, err := storage.GetPage(ctx, "home"); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("expected ErrStorageClosed, got %v", err)
	}
	if err := storage.LogGeneration(ctx, &models.GenerationLog{}); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("expected ErrStorageClosed, got %v", err)
	}
}
