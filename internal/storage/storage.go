// Package storage provides the storage interface and implementations.
package storage

import (
	"context"

	"github.com/mandalnilabja/inkgate/internal/storage/models"
	"github.com/mandalnilabja/inkgate/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	Page            = models.Page
	ContentBlock    = models.ContentBlock
	PortfolioItem   = models.PortfolioItem
	CrewMember      = models.CrewMember
	ContactInfo     = models.ContactInfo
	ContentSeed     = models.ContentSeed
	GenerationLog   = models.GenerationLog
	GenerationStats = models.GenerationStats
	OutcomeCount    = models.OutcomeCount
	StatsFilter     = models.StatsFilter
)

// Re-export block types from models package
const (
	BlockText      = models.BlockText
	BlockPortfolio = models.BlockPortfolio
	BlockCrew      = models.BlockCrew
	BlockContact   = models.BlockContact
)

// Re-export functions from models package
var ParseSeed = models.ParseSeed

// Re-export errors from sqlite package
var (
	ErrNotFound      = sqlite.ErrNotFound
	ErrStorageClosed = sqlite.ErrStorageClosed
)

// ContentStore is the read side of the studio's CMS content.
type ContentStore interface {
	GetPage(ctx context.Context, slug string) (*models.Page, error)
	ListPortfolio(ctx context.Context) ([]*models.PortfolioItem, error)
	ListCrew(ctx context.Context) ([]*models.CrewMember, error)
	GetContact(ctx context.Context) (*models.ContactInfo, error)
}

// GenerationLogStore records and aggregates generation outcomes.
type GenerationLogStore interface {
	LogGeneration(ctx context.Context, log *models.GenerationLog) error
	GetGenerationStats(ctx context.Context, filter models.StatsFilter) (*models.GenerationStats, error)
}

// Storage defines the interface for persistent data storage
type Storage interface {
	ContentStore
	GenerationLogStore

	// SeedContent populates the content tables when they are empty and
	// reports whether it wrote anything.
	SeedContent(ctx context.Context, seed *models.ContentSeed) (bool, error)

	// Maintenance operations
	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance
// This is the main factory function for creating storage
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
