package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

func validateProviders(entries []ProviderConfig) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return fmt.Errorf("%w: providers[%d]: %s", ErrInvalidConfig, i, describe(err))
		}
		if e.Kind == "huggingface" && e.URL == "" {
			return fmt.Errorf("%w: providers[%d]: huggingface entry needs url", ErrInvalidConfig, i)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate provider name %q", ErrInvalidConfig, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Validate checks the resolved configuration for values the server
// cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.RateLimit.Max < 1:
		return fmt.Errorf("%w: rate limit max must be positive", ErrInvalidConfig)
	case c.RateLimit.Window <= 0:
		return fmt.Errorf("%w: rate limit window must be positive", ErrInvalidConfig)
	case c.RateLimit.Backend != BackendMemory && c.RateLimit.Backend != BackendRedis:
		return fmt.Errorf("%w: unknown rate limit backend %q", ErrInvalidConfig, c.RateLimit.Backend)
	case c.Prompt.MinLength < 0 || c.Prompt.MaxLength < 1:
		return fmt.Errorf("%w: prompt length bounds must be positive", ErrInvalidConfig)
	case c.Prompt.MinLength > c.Prompt.MaxLength:
		return fmt.Errorf("%w: prompt min length exceeds max length", ErrInvalidConfig)
	case c.ProviderTimeout <= 0:
		return fmt.Errorf("%w: provider timeout must be positive", ErrInvalidConfig)
	}

	switch c.FallbackMode {
	case FallbackIcon, FallbackRandom, FallbackSequence:
	default:
		return fmt.Errorf("%w: unknown fallback mode %q", ErrInvalidConfig, c.FallbackMode)
	}

	for _, p := range c.Providers {
		if p.Timeout <= 0 {
			return fmt.Errorf("%w: provider %q timeout must be positive", ErrInvalidConfig, p.Name)
		}
	}
	return nil
}

// describe flattens validator errors into "field: tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
