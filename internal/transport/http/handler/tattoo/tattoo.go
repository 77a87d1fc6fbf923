// Package tattoo serves the image generation endpoint and its status and
// statistics companions.
package tattoo

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mandalnilabja/inkgate/internal/generation"
	"github.com/mandalnilabja/inkgate/internal/prompt"
	"github.com/mandalnilabja/inkgate/internal/provider"
	"github.com/mandalnilabja/inkgate/internal/storage"
	"github.com/mandalnilabja/inkgate/internal/tokenizer"
)

// Generator produces an image for a prompt. *generation.Orchestrator
// implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) *generation.Result
	Chain() []provider.Entry
}

// RequestObserver records finished generate requests.
type RequestObserver interface {
	ObserveRequest(outcome string, d time.Duration)
}

// Deps holds everything the tattoo handlers need. Log, Metrics and
// Tokenizer are optional.
type Deps struct {
	Generator  Generator
	Fallbacks  *generation.Fallbacks
	Rules      prompt.Rules
	RateMax    int
	RateWindow time.Duration
	ClientKey  func(*http.Request) string
	Log        storage.GenerationLogStore
	Metrics    RequestObserver
	Tokenizer  tokenizer.Counter
	Logger     *slog.Logger
}

// Handlers holds the dependencies for tattoo HTTP handlers.
type Handlers struct {
	Deps

	// now is replaced in tests
	now func() time.Time
	wg  sync.WaitGroup
}

// New creates a new instance of tattoo handlers.
func New(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.ClientKey == nil {
		deps.ClientKey = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Handlers{Deps: deps, now: time.Now}
}

// Wait blocks until every pending generation log write has finished.
func (h *Handlers) Wait() {
	h.wg.Wait()
}
