// Package provider defines the image generation providers and assembles
// the ordered chain the orchestrator walks.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/mandalnilabja/inkgate/internal/types"
)

// Provider is one external text-to-image service.
type Provider interface {
	// Name returns the display name used in logs and user messages
	Name() string

	// Kind returns the provider family, e.g. "huggingface"
	Kind() string

	// Configured reports whether the required credentials are present
	Configured() bool

	// Attempt generates one image for prompt. Failures are returned as
	// *types.AttemptError. Implementations must honor ctx cancellation.
	Attempt(ctx context.Context, prompt string) (*types.ProviderImage, error)
}

// Entry is a provider together with its per-attempt timeout.
type Entry struct {
	Provider Provider
	Timeout  time.Duration
}

// Options carries the resolved settings for one provider instance.
type Options struct {
	Name   string
	URL    string
	Model  string
	Key    string
	Secret string

	HTTPClient *http.Client
}

// NewHTTPClient returns the client shared by all providers. It has no
// overall timeout; attempts are bounded by their context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
