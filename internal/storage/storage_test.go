package storage

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/mandalnilabja/inkgate/web"
)

func TestEmbeddedSeed(t *testing.T) {
	data, err := fs.ReadFile(web.FS, web.SeedFile)
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("embedded seed is invalid: %v", err)
	}

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "inkgate.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.SeedContent(ctx, seed); err != nil {
		t.Fatalf("SeedContent failed: %v", err)
	}

	for _, slug := range []string{"home", "kontakt"} {
		if _, err := store.GetPage(ctx, slug); err != nil {
			t.Errorf("GetPage(%q) failed: %v", slug, err)
		}
	}

	portfolio, err := store.ListPortfolio(ctx)
	if err != nil || len(portfolio) != len(seed.Portfolio) {
		t.Errorf("expected %d portfolio items, got %d (%v)", len(seed.Portfolio), len(portfolio), err)
	}
}
