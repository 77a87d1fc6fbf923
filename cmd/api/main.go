package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mandalnilabja/inkgate/internal/app"
	"github.com/mandalnilabja/inkgate/internal/config"
	"github.com/mandalnilabja/inkgate/internal/generation"
	"github.com/mandalnilabja/inkgate/internal/metrics"
	"github.com/mandalnilabja/inkgate/internal/prompt"
	"github.com/mandalnilabja/inkgate/internal/provider"
	"github.com/mandalnilabja/inkgate/internal/storage"
	"github.com/mandalnilabja/inkgate/internal/tokenizer"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/content"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/tattoo"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware/ratelimit"
	"github.com/mandalnilabja/inkgate/web"
)

// contentCacheBytes bounds the encoded content responses kept in memory.
const contentCacheBytes = 32 << 20

// shutdownTimeout is the minimum time in-flight requests get after a signal.
const shutdownTimeout = 15 * time.Second

// drainTimeout returns how long shutdown waits for in-flight requests. A
// generate request may run until the server's write timeout, so shutdown
// never gives up before that.
func drainTimeout(writeTimeout time.Duration) time.Duration {
	return max(shutdownTimeout, writeTimeout)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "inkgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// Write a commented config file on first start
	if err := config.EnsureConfigFile(); err != nil {
		logger.Warn("could not create config file", "path", config.ConfigPath(), "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if err := seedContent(ctx, store, logger); err != nil {
		return err
	}

	// Rate limiting
	limitStore, err := newLimitStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer limitStore.Close()
	limiter := ratelimit.NewLimiter(limitStore, cfg.RateLimit.Max, cfg.RateLimit.Window, logger)

	// Providers and orchestration
	chain, err := provider.NewChain(cfg.Providers, provider.NewCredentialResolver(nil), provider.NewHTTPClient())
	if err != nil {
		return fmt.Errorf("build provider chain: %w", err)
	}
	for _, e := range chain {
		if !e.Provider.Configured() {
			logger.Warn("provider has no credentials, its attempts will fail as unconfigured", "provider", e.Provider.Name(), "kind", e.Provider.Kind())
		}
	}

	fallbacks, err := generation.NewFallbacks(cfg.FallbackMode, web.FS, web.FallbackDir, web.FallbackIcon, "/static/fallback")
	if err != nil {
		return fmt.Errorf("load fallback images: %w", err)
	}

	m := metrics.New()
	orch := generation.New(chain, fallbacks, m, logger)

	// HTTP
	cache, err := content.NewCache(contentCacheBytes)
	if err != nil {
		return fmt.Errorf("create content cache: %w", err)
	}
	defer cache.Close()

	clientKey := ratelimit.ClientIP(cfg.TrustProxy)
	tattooHandlers := tattoo.New(tattoo.Deps{
		Generator:  orch,
		Fallbacks:  fallbacks,
		Rules:      prompt.Rules{MinLength: cfg.Prompt.MinLength, MaxLength: cfg.Prompt.MaxLength},
		RateMax:    limiter.Max(),
		RateWindow: limiter.Window(),
		ClientKey:  clientKey,
		Log:        store,
		Metrics:    m,
		Tokenizer:  tokenizer.New(),
		Logger:     logger,
	})
	repo := handler.NewRepo(tattooHandlers, content.New(store, cache, logger))

	opts := &app.RouterOptions{
		Logger:    logger,
		Limiter:   limiter,
		ClientKey: clientKey,
		Static:    web.FS,
	}
	if cfg.EnableMetrics {
		opts.Metrics = m.Handler()
	}

	srv := app.NewServer(cfg, app.NewRouter(repo, opts), logger)
	printStartupBanner(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout(srv.WriteTimeout()))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Handlers may still be running and scheduling log writes, so
		// waiting on them here is unsafe.
		logger.Error("graceful shutdown failed, pending generation logs may be lost", "error", err)
		return nil
	}
	tattooHandlers.Wait()
	return nil
}

// seedContent fills an empty content store from the embedded seed.
func seedContent(ctx context.Context, store storage.Storage, logger *slog.Logger) error {
	data, err := fs.ReadFile(web.FS, web.SeedFile)
	if err != nil {
		return fmt.Errorf("read content seed: %w", err)
	}
	seed, err := storage.ParseSeed(data)
	if err != nil {
		return err
	}

	wrote, err := store.SeedContent(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed content: %w", err)
	}
	if wrote {
		logger.Info("content store seeded", "pages", len(seed.Pages), "portfolio", len(seed.Portfolio), "crew", len(seed.Crew))
	}
	return nil
}

// newLimitStore creates the rate-limit store selected in the config.
func newLimitStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, error) {
	switch cfg.RateLimit.Backend {
	case config.BackendMemory:
		return ratelimit.NewMemoryStore(), nil
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		store, err := ratelimit.NewRedisStore(ctx, ratelimit.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("rate limit store: %w", err)
		}
		return store, nil
	default:
		return nil, errors.New("unknown rate limit backend " + cfg.RateLimit.Backend)
	}
}
