// Package content serves the studio's read-only CMS content.
package content

import (
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/mandalnilabja/inkgate/internal/storage"
)

// DefaultTTL is how long an encoded response stays cached.
const DefaultTTL = 5 * time.Minute

// Handlers holds the dependencies for content HTTP handlers.
type Handlers struct {
	Store  storage.ContentStore
	Cache  *ristretto.Cache[string, []byte]
	TTL    time.Duration
	Logger *slog.Logger
}

// New creates a new instance of content handlers. cache may be nil, in
// which case every request reads the store.
func New(store storage.ContentStore, cache *ristretto.Cache[string, []byte], logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Store:  store,
		Cache:  cache,
		TTL:    DefaultTTL,
		Logger: logger,
	}
}

// NewCache creates the response cache. Cost is the encoded body size, so
// maxBytes bounds memory use.
func NewCache(maxBytes int64) (*ristretto.Cache[string, []byte], error) {
	return ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e4,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
}
