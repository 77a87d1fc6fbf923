package models

import (
	"encoding/json"
	"fmt"
)

// Block types a page can contain.
const (
	BlockText      = "text"
	BlockPortfolio = "portfolio"
	BlockCrew      = "crew"
	BlockContact   = "contact"
)

// ContentBlock is one ordered element of a page. Portfolio and crew blocks
// reference an item by ID; text blocks carry their own copy.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// Page represents an editable site page
type Page struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Slug   string         `json:"slug"`
	Blocks []ContentBlock `json:"blocks"`
}

// PortfolioItem represents a finished tattoo shown in the gallery
type PortfolioItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	Artist   string `json:"artist"`
	Category string `json:"category"`
	Image    string `json:"image"`
	Alt      string `json:"alt"`
}

// CrewMember represents an artist of the studio
type CrewMember struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Experience  string   `json:"experience"`
	Quote       string   `json:"quote"`
	Specialties []string `json:"specialties"`
	Instagram   string   `json:"instagram,omitempty"`
	Image       string   `json:"image"`
	Alt         string   `json:"alt"`
}

// ContactInfo holds the studio's address and opening hours
type ContactInfo struct {
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	OpeningHours string `json:"openingHours"`
}

// ContentSeed is the document used to populate an empty content store.
type ContentSeed struct {
	Contact   ContactInfo     `json:"contact"`
	Portfolio []PortfolioItem `json:"portfolio"`
	Crew      []CrewMember    `json:"crew"`
	Pages     []Page          `json:"pages"`
}

// ParseSeed decodes a seed document and checks that every block
// reference points at an item in the same document.
func ParseSeed(data []byte) (*ContentSeed, error) {
	var seed ContentSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode content seed: %w", err)
	}

	refs := make(map[string]string, len(seed.Portfolio)+len(seed.Crew))
	for _, p := range seed.Portfolio {
		refs[p.ID] = BlockPortfolio
	}
	for _, c := range seed.Crew {
		refs[c.ID] = BlockCrew
	}

	slugs := make(map[string]bool, len(seed.Pages))
	for _, page := range seed.Pages {
		if page.Slug == "" {
			return nil, fmt.Errorf("page %q has no slug", page.ID)
		}
		if slugs[page.Slug] {
			return nil, fmt.Errorf("duplicate page slug %q", page.Slug)
		}
		slugs[page.Slug] = true

		for i, b := range page.Blocks {
			switch b.Type {
			case BlockText, BlockContact:
			case BlockPortfolio, BlockCrew:
				if refs[b.Ref] != b.Type {
					return nil, fmt.Errorf("page %q block %d: unknown %s reference %q", page.Slug, i, b.Type, b.Ref)
				}
			default:
				return nil, fmt.Errorf("page %q block %d: unknown type %q", page.Slug, i, b.Type)
			}
		}
	}
	return &seed, nil
}
