package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default values used when neither env nor config file set a key.
const (
	DefaultServerPort      = ":8080"
	DefaultRateLimitMax    = 4
	DefaultRateLimitWindow = 10 * time.Minute
	DefaultPromptMin       = 5
	DefaultPromptMax       = 300
	DefaultProviderTimeout = 40 * time.Second
	DefaultRedisPrefix     = "inkgate:ratelimit:"

	BackendMemory = "memory"
	BackendRedis  = "redis"

	FallbackIcon     = "icon"
	FallbackRandom   = "random"
	FallbackSequence = "sequence"
)

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → .env → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	// LogLevel is one of debug, info, warn, error
	LogLevel string

	EnableMetrics bool

	// TrustProxy makes the rate limiter key on X-Forwarded-For
	TrustProxy bool

	DBPath string

	RateLimit RateLimit
	Redis     Redis
	Prompt    Prompt

	// ProviderTimeout bounds a single provider attempt unless the
	// provider entry sets its own timeout.
	ProviderTimeout time.Duration

	FallbackMode string

	// Providers is the ordered generation chain.
	Providers []Provider
}

// RateLimit configures the per-client request budget.
type RateLimit struct {
	Max     int
	Window  time.Duration
	Backend string
}

// Redis holds connection settings for the shared rate-limit store.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Prompt bounds accepted descriptions, in characters.
type Prompt struct {
	MinLength int
	MaxLength int
}

// Provider is a resolved entry of the generation chain.
type Provider struct {
	Name          string
	Kind          string
	URL           string
	Model         string
	CredentialEnv string
	SecretEnv     string
	Timeout       time.Duration
}

// DefaultProviders is the chain used when the config file declares none.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:          "SD v1-5",
			Kind:          "huggingface",
			URL:           "https://api-inference.huggingface.co/models/runwayml/stable-diffusion-v1-5",
			CredentialEnv: "HUGGINGFACE_ACCESS_TOKEN",
		},
		{
			Name:          "SD v2",
			Kind:          "huggingface",
			URL:           "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2",
			CredentialEnv: "HUGGINGFACE_ACCESS_TOKEN",
		},
	}
}

// Load reads configuration from .env, the config file and environment
// variables. Environment variables override file config values.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	fileConfig, err := LoadFile()
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return build(fileConfig)
}

func build(fc *FileConfig) (*Config, error) {
	cfg := &Config{
		ServerPort:    getEnvOrFile("SERVER_PORT", fc.ServerPort, DefaultServerPort),
		LogLevel:      getEnvOrFile("LOG_LEVEL", fc.LogLevel, "info"),
		EnableMetrics: getEnvBoolOrFile("ENABLE_METRICS", fc.EnableMetrics, true),
		TrustProxy:    getEnvBoolOrFile("TRUST_PROXY", fc.TrustProxy, false),
		DBPath:        getEnvOrFile("DB_PATH", fc.DBPath, DBPath()),
		FallbackMode:  getEnvOrFile("FALLBACK_MODE", fc.FallbackMode, FallbackIcon),
		RateLimit: RateLimit{
			Backend: getEnvOrFile("RATE_LIMIT_BACKEND", fc.RateLimit.Backend, BackendMemory),
		},
		Redis: Redis{
			Addr:     getEnvOrFile("REDIS_ADDR", fc.Redis.Addr, "localhost:6379"),
			Password: getEnvOrFile("REDIS_PASSWORD", fc.Redis.Password, ""),
			Prefix:   getEnvOrFile("REDIS_PREFIX", fc.Redis.Prefix, DefaultRedisPrefix),
		},
	}

	var err error
	if cfg.RateLimit.Max, err = getEnvIntOrFile("RATE_LIMIT_MAX", fc.RateLimit.Max, DefaultRateLimitMax); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = getEnvDurationOrFile("RATE_LIMIT_WINDOW", fc.RateLimit.Window, DefaultRateLimitWindow); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getEnvIntOrFile("REDIS_DB", fc.Redis.DB, 0); err != nil {
		return nil, err
	}
	if cfg.Prompt.MinLength, err = getEnvIntOrFile("PROMPT_MIN_LENGTH", fc.Prompt.MinLength, DefaultPromptMin); err != nil {
		return nil, err
	}
	if cfg.Prompt.MaxLength, err = getEnvIntOrFile("PROMPT_MAX_LENGTH", fc.Prompt.MaxLength, DefaultPromptMax); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getEnvDurationOrFile("PROVIDER_TIMEOUT", fc.ProviderTimeout, DefaultProviderTimeout); err != nil {
		return nil, err
	}

	entries := fc.Providers
	if len(entries) == 0 {
		entries = DefaultProviders()
	}
	if err := validateProviders(entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		timeout := cfg.ProviderTimeout
		if e.Timeout != "" {
			if timeout, err = time.ParseDuration(e.Timeout); err != nil {
				return nil, fmt.Errorf("provider %q: invalid timeout %q: %w", e.Name, e.Timeout, err)
			}
		}
		cfg.Providers = append(cfg.Providers, Provider{
			Name:          e.Name,
			Kind:          e.Kind,
			URL:           e.URL,
			Model:         e.Model,
			CredentialEnv: e.CredentialEnv,
			SecretEnv:     e.SecretEnv,
			Timeout:       timeout,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

func getEnvIntOrFile(key string, fileValue, defaultValue int) (int, error) {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}
	if fileValue != 0 {
		return fileValue, nil
	}
	return defaultValue, nil
}

func getEnvDurationOrFile(key, fileValue string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrFile(key, fileValue, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
