package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/inkgate/internal/transport/http/handler"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware/ratelimit"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger

	// Limiter guards the generate endpoint; ClientKey identifies callers.
	Limiter   *ratelimit.Limiter
	ClientKey func(*http.Request) string

	// Static is served under /static/. Nil disables it.
	Static fs.FS

	// Metrics is mounted at /metrics when not nil.
	Metrics http.Handler
}

// NewRouter creates and configures the HTTP router with all application routes.
// Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Generation
	limit := ratelimit.Middleware(opts.Limiter, opts.ClientKey, http.HandlerFunc(repo.Tattoo.RateLimited))
	mux.Handle("POST /api/generate-tattoo", limit(http.HandlerFunc(repo.Tattoo.Generate)))
	mux.HandleFunc("GET /api/tattoo-status", repo.Tattoo.Status)
	mux.HandleFunc("GET /api/generation-stats", repo.Tattoo.GenerationStats)

	// CMS content (read-only)
	mux.HandleFunc("GET /api/content/pages/{slug}", repo.Content.GetPage)
	mux.HandleFunc("GET /api/content/portfolio", repo.Content.ListPortfolio)
	mux.HandleFunc("GET /api/content/crew", repo.Content.ListCrew)
	mux.HandleFunc("GET /api/content/contact", repo.Content.GetContact)

	// Infrastructure
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}
	if opts.Static != nil {
		mux.Handle("GET /static/", staticHandler(opts.Static))
	}

	// Root returns JSON status
	mux.HandleFunc("GET /{$}", repo.Infra.RootStatus)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	// Request logging (if logger provided)
	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	// Request ID (always applied)
	h = middleware.RequestID(h)

	// CORS (always applied, the site may be served from another origin)
	h = middleware.CORS(h)

	return h
}

// staticHandler serves the fallback images with a long cache lifetime;
// their names never change between releases.
func staticHandler(static fs.FS) http.Handler {
	files := http.FileServerFS(static)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
