// Package openai implements the OpenAI Images API provider.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mandalnilabja/inkgate/internal/provider/upstream"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// Kind is the configuration kind for this provider.
const Kind = "openai"

// DefaultModel is used when the entry sets none.
const DefaultModel = goopenai.CreateImageModelDallE3

// Provider generates images through an OpenAI-compatible Images API.
type Provider struct {
	name   string
	model  string
	key    string
	client *goopenai.Client
}

// New creates a provider. baseURL may be empty for the public API.
func New(name, baseURL, model, key string, httpClient *http.Client) *Provider {
	if model == "" {
		model = DefaultModel
	}

	cfg := goopenai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &Provider{
		name:   name,
		model:  model,
		key:    key,
		client: goopenai.NewClientWithConfig(cfg),
	}
}

// Name returns the display name.
func (p *Provider) Name() string { return p.name }

// Kind returns "openai".
func (p *Provider) Kind() string { return Kind }

// Configured reports whether an API key is set.
func (p *Provider) Configured() bool { return p.key != "" }

// Attempt requests a single base64 encoded image.
func (p *Provider) Attempt(ctx context.Context, prompt string) (*types.ProviderImage, error) {
	if !p.Configured() {
		return nil, upstream.Unconfigured(p.name)
	}

	resp, err := p.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          p.model,
		N:              1,
		Size:           goopenai.CreateImageSize1024x1024,
		ResponseFormat: goopenai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, p.classify(ctx, err)
	}

	if len(resp.Data) == 0 {
		return nil, upstream.Malformed(p.name, http.StatusOK, errors.New("no image in response"))
	}

	img := resp.Data[0]
	switch {
	case img.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, upstream.Malformed(p.name, http.StatusOK, fmt.Errorf("decode b64_json: %w", err))
		}
		return &types.ProviderImage{Data: data}, nil
	case img.URL != "":
		return &types.ProviderImage{URL: img.URL}, nil
	default:
		return nil, upstream.Malformed(p.name, http.StatusOK, errors.New("empty image entry"))
	}
}

func (p *Provider) classify(ctx context.Context, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		kind := types.Classify(apiErr.HTTPStatusCode, []byte(apiErr.Message))
		return types.NewAttemptError(p.name, kind, apiErr.HTTPStatusCode, errors.New(http.StatusText(apiErr.HTTPStatusCode)))
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		kind := types.Classify(reqErr.HTTPStatusCode, nil)
		return types.NewAttemptError(p.name, kind, reqErr.HTTPStatusCode, errors.New(http.StatusText(reqErr.HTTPStatusCode)))
	}

	return upstream.TransportError(ctx, p.name, err)
}
