package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mandalnilabja/inkgate/internal/generation"
	"github.com/mandalnilabja/inkgate/internal/metrics"
	"github.com/mandalnilabja/inkgate/internal/prompt"
	"github.com/mandalnilabja/inkgate/internal/provider"
	"github.com/mandalnilabja/inkgate/internal/storage"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/content"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/tattoo"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware/ratelimit"
	"github.com/mandalnilabja/inkgate/internal/types"
	"github.com/mandalnilabja/inkgate/web"
)

type pngProvider struct{ data []byte }

func (p pngProvider) Name() string     { return "SD v1-5" }
func (p pngProvider) Kind() string     { return "huggingface" }
func (p pngProvider) Configured() bool { return true }
func (p pngProvider) Attempt(context.Context, string) (*types.ProviderImage, error) {
	return &types.ProviderImage{Data: p.data, ContentType: "image/png"}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}

	fb, err := generation.NewFallbacks(generation.ModeIcon, web.FS, web.FallbackDir, web.FallbackIcon, "/static/fallback")
	if err != nil {
		t.Fatalf("NewFallbacks: %v", err)
	}
	m := metrics.New()
	chain := []provider.Entry{{Provider: pngProvider{data: buf.Bytes()}, Timeout: time.Second}}
	orch := generation.New(chain, fb, m, logger)

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "inkgate.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	seedData, err := fs.ReadFile(web.FS, web.SeedFile)
	if err != nil {
		t.Fatal(err)
	}
	seed, err := storage.ParseSeed(seedData)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SeedContent(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	limitStore := ratelimit.NewMemoryStore()
	t.Cleanup(func() { limitStore.Close() })
	limiter := ratelimit.NewLimiter(limitStore, 4, 10*time.Minute, logger)
	clientKey := ratelimit.ClientIP(false)

	th := tattoo.New(tattoo.Deps{
		Generator:  orch,
		Fallbacks:  fb,
		Rules:      prompt.DefaultRules,
		RateMax:    limiter.Max(),
		RateWindow: limiter.Window(),
		ClientKey:  clientKey,
		Log:        store,
		Metrics:    m,
		Logger:     logger,
	})
	t.Cleanup(th.Wait)

	repo := handler.NewRepo(th, content.New(store, nil, logger))
	return NewRouter(repo, &RouterOptions{
		Logger:    logger,
		Limiter:   limiter,
		ClientKey: clientKey,
		Static:    web.FS,
		Metrics:   m.Handler(),
	}), m
}

func generate(h http.Handler, remoteAddr, body string) (*httptest.ResponseRecorder, types.GenerateResponse) {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-tattoo", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp types.GenerateResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestRouter_FifthRequestIsRateLimited(t *testing.T) {
	h, _ := newTestRouter(t)
	const client = "203.0.113.7:5000"

	for i := 1; i <= 4; i++ {
		rec, resp := generate(h, client, `{"description":"a wolf howling at the moon, geometric style"}`)
		if rec.Code != http.StatusOK || resp.IsFallback {
			t.Fatalf("request %d: status %d, response %+v", i, rec.Code, resp)
		}
		if !strings.HasPrefix(resp.Image, "data:image/png;base64,") {
			t.Fatalf("request %d: expected generated png, got %.40q", i, resp.Image)
		}
		if got := rec.Header().Get("RateLimit-Remaining"); got != strconv.Itoa(4-i) {
			t.Errorf("request %d: RateLimit-Remaining = %q", i, got)
		}
	}

	// The fifth request is limited even with invalid input
	rec, resp := generate(h, client, `{"description":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for rate limited request, got %d", rec.Code)
	}
	if !resp.IsFallback || resp.Image == "" || resp.Message != generation.MsgRateLimited {
		t.Errorf("unexpected rate limited response %+v", resp)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Other clients keep their own budget
	rec, resp = generate(h, "198.51.100.2:6000", `{"description":"lotus flower"}`)
	if rec.Code != http.StatusOK || resp.IsFallback {
		t.Errorf("expected other client to be served, got %d %+v", rec.Code, resp)
	}
}

func TestRouter_InvalidInputConsumesBudget(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, resp := generate(h, "192.0.2.1:1", `{"description":"`+strings.Repeat("x", 301)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(resp.Error, "301") || resp.Image == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if got := rec.Header().Get("RateLimit-Remaining"); got != "3" {
		t.Errorf("RateLimit-Remaining = %q, want 3", got)
	}
}

func TestRouter_Routes(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"root status", http.MethodGet, "/", http.StatusOK, `"name":"inkgate"`},
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"active"`},
		{"tattoo status", http.MethodGet, "/api/tattoo-status", http.StatusOK, `"huggingface_configured":true`},
		{"generation stats", http.MethodGet, "/api/generation-stats", http.StatusOK, `"total_requests"`},
		{"home page", http.MethodGet, "/api/content/pages/home", http.StatusOK, `"slug":"home"`},
		{"missing page", http.MethodGet, "/api/content/pages/nope", http.StatusNotFound, "not_found_error"},
		{"portfolio", http.MethodGet, "/api/content/portfolio", http.StatusOK, `"items"`},
		{"crew", http.MethodGet, "/api/content/crew", http.StatusOK, `"crew"`},
		{"contact", http.MethodGet, "/api/content/contact", http.StatusOK, "Regensdorf"},
		{"fallback asset", http.MethodGet, "/static/fallback/rose.svg", http.StatusOK, "<svg"},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "inkgate_generation_requests_total"},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound, ""},
		{"wrong method", http.MethodGet, "/api/generate-tattoo", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("%s %s: expected %d, got %d", tt.method, tt.path, tt.wantStatus, rec.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("%s %s: body %.200q missing %q", tt.method, tt.path, rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestRouter_Preflight(t *testing.T) {
	h, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-tattoo", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
