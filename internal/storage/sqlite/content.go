package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mandalnilabja/inkgate/internal/storage/models"
)

// GetPage retrieves a page by slug
func (s *Storage) GetPage(ctx context.Context, slug string) (*models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	var page models.Page
	var blocks string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, title, blocks FROM pages WHERE slug = ?`, slug,
	).Scan(&page.ID, &page.Slug, &page.Title, &blocks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(blocks), &page.Blocks); err != nil {
		return nil, fmt.Errorf("decode blocks of page %q: %w", slug, err)
	}
	return &page, nil
}

// ListPortfolio returns all portfolio items in display order
func (s *Storage) ListPortfolio(ctx context.Context) ([]*models.PortfolioItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, year, artist, category, image, alt
		FROM portfolio_items
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.PortfolioItem{}
	for rows.Next() {
		var p models.PortfolioItem
		if err := rows.Scan(&p.ID, &p.Title, &p.Year, &p.Artist, &p.Category, &p.Image, &p.Alt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}

	return items, rows.Err()
}

// ListCrew returns all crew members in display order
func (s *Storage) ListCrew(ctx context.Context) ([]*models.CrewMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, experience, quote, specialties,
			COALESCE(instagram, ''), image, alt
		FROM crew_members
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crew := []*models.CrewMember{}
	for rows.Next() {
		var c models.CrewMember
		var specialties string

		err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.Experience, &c.Quote, &specialties,
			&c.Instagram, &c.Image, &c.Alt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(specialties), &c.Specialties); err != nil {
			return nil, fmt.Errorf("decode specialties of %q: %w", c.ID, err)
		}
		crew = append(crew, &c)
	}

	return crew, rows.Err()
}

// GetContact returns the studio contact details
func (s *Storage) GetContact(ctx context.Context) (*models.ContactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	var c models.ContactInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT address, phone, email, opening_hours FROM contact_info WHERE id = 1`,
	).Scan(&c.Address, &c.Phone, &c.Email, &c.OpeningHours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
