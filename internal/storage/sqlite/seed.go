package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mandalnilabja/inkgate/internal/storage/models"
)

// SeedContent writes seed into the content tables if no page exists yet.
// The whole document is written in one transaction.
func (s *Storage) SeedContent(ctx context.Context, seed *models.ContentSeed) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrStorageClosed
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if err := seedTx(ctx, tx, seed); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func seedTx(ctx context.Context, tx *sql.Tx, seed *models.ContentSeed) error {
	c := seed.Contact
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO contact_info (id, address, phone, email, opening_hours)
		VALUES (1, ?, ?, ?, ?)
	`, c.Address, c.Phone, c.Email, c.OpeningHours)
	if err != nil {
		return fmt.Errorf("seed contact: %w", err)
	}

	for i, p := range seed.Portfolio {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO portfolio_items (id, position, title, year, artist, category, image, alt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, i, p.Title, p.Year, p.Artist, p.Category, p.Image, p.Alt)
		if err != nil {
			return fmt.Errorf("seed portfolio item %q: %w", p.ID, err)
		}
	}

	for i, m := range seed.Crew {
		specialties, err := json.Marshal(nonNil(m.Specialties))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO crew_members (id, position, name, role, experience, quote,
				specialties, instagram, image, alt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, i, m.Name, m.Role, m.Experience, m.Quote,
			string(specialties), nullString(m.Instagram), m.Image, m.Alt)
		if err != nil {
			return fmt.Errorf("seed crew member %q: %w", m.ID, err)
		}
	}

	for _, page := range seed.Pages {
		blocks, err := json.Marshal(page.Blocks)
		if err != nil {
			return err
		}
		id := page.ID
		if id == "" {
			id = generateID("page")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pages (id, slug, title, blocks) VALUES (?, ?, ?, ?)`,
			id, page.Slug, page.Title, string(blocks))
		if err != nil {
			return fmt.Errorf("seed page %q: %w", page.Slug, err)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
