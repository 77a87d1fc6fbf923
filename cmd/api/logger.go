package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mandalnilabja/inkgate/internal/config"
	"github.com/mandalnilabja/inkgate/internal/version"
)

func setupLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

// parseLevel maps a config level name to slog; unknown names mean info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Inkgate %s - Tattoo Image Generation API\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Generate:   http://localhost%s/api/generate-tattoo\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Status:     http://localhost%s/api/tattoo-status\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Content:    http://localhost%s/api/content/\n", cfg.ServerPort)
	if cfg.EnableMetrics {
		fmt.Fprintf(os.Stderr, "Metrics:    http://localhost%s/metrics\n", cfg.ServerPort)
	}
	fmt.Fprintf(os.Stderr, "Providers:  %d configured, rate limit %d per %s (%s)\n",
		len(cfg.Providers), cfg.RateLimit.Max, cfg.RateLimit.Window, cfg.RateLimit.Backend)
	fmt.Fprintf(os.Stderr, "Data:       %s\n", config.DataDir())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
