// Package huggingface implements the Hugging Face Inference API provider
// for text-to-image models.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/mandalnilabja/inkgate/internal/provider/upstream"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// Kind is the configuration kind for this provider.
const Kind = "huggingface"

// Provider calls one Inference API model endpoint.
type Provider struct {
	name   string
	url    string
	token  string
	client *http.Client
}

// New creates a provider for the model endpoint url.
func New(name, url, token string, client *http.Client) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{name: name, url: url, token: token, client: client}
}

// Name returns the display name.
func (p *Provider) Name() string { return p.name }

// Kind returns "huggingface".
func (p *Provider) Kind() string { return Kind }

// Configured reports whether an access token is set.
func (p *Provider) Configured() bool { return p.token != "" }

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Attempt posts the prompt and expects raw image bytes back.
func (p *Provider) Attempt(ctx context.Context, prompt string) (*types.ProviderImage, error) {
	if !p.Configured() {
		return nil, upstream.Unconfigured(p.name)
	}

	body, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, upstream.TransportError(ctx, p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstream.StatusError(p.name, resp)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, upstream.Malformed(p.name, resp.StatusCode, fmt.Errorf("unexpected content type %q", contentType))
	}

	data, err := upstream.ReadImage(resp.Body)
	if err != nil {
		if errors.Is(err, upstream.ErrImageTooLarge) {
			return nil, upstream.Malformed(p.name, resp.StatusCode, err)
		}
		return nil, upstream.TransportError(ctx, p.name, err)
	}
	if len(data) == 0 {
		return nil, upstream.Malformed(p.name, resp.StatusCode, errors.New("empty image body"))
	}

	return &types.ProviderImage{Data: data, ContentType: contentType}, nil
}
