// Package fusionbrain implements the Fusion Brain (Kandinsky) provider.
// Generation is asynchronous: a job is started and polled until done.
package fusionbrain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/mandalnilabja/inkgate/internal/provider/upstream"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// Kind is the configuration kind for this provider.
const Kind = "fusionbrain"

const (
	defaultBaseURL      = "https://api-key.fusionbrain.ai"
	defaultPollInterval = 3 * time.Second
	imageSize           = 1024
)

// Job states reported by the status endpoint.
const (
	StatusInitial    = "INITIAL"
	StatusProcessing = "PROCESSING"
	StatusDone       = "DONE"
	StatusFail       = "FAIL"
)

// Provider is a Fusion Brain API client.
type Provider struct {
	name         string
	baseURL      string
	apiKey       string
	secretKey    string
	client       *http.Client
	pollInterval time.Duration
}

// New creates a provider. baseURL may be empty for the public API.
func New(name, baseURL, apiKey, secretKey string, client *http.Client) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{
		name:         name,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		secretKey:    secretKey,
		client:       client,
		pollInterval: defaultPollInterval,
	}
}

// Name returns the display name.
func (p *Provider) Name() string { return p.name }

// Kind returns "fusionbrain".
func (p *Provider) Kind() string { return Kind }

// Configured reports whether both key and secret are set.
func (p *Provider) Configured() bool { return p.apiKey != "" && p.secretKey != "" }

// Attempt starts a generation job and waits for its first image. The wait
// ends with ctx.
func (p *Provider) Attempt(ctx context.Context, prompt string) (*types.ProviderImage, error) {
	if !p.Configured() {
		return nil, upstream.Unconfigured(p.name)
	}

	pipelineID, err := p.pipelineID(ctx)
	if err != nil {
		return nil, err
	}

	jobID, err := p.run(ctx, pipelineID, prompt)
	if err != nil {
		return nil, err
	}

	return p.wait(ctx, jobID)
}

func (p *Provider) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Key", "Key "+p.apiKey)
	req.Header.Set("X-Secret", "Secret "+p.secretKey)
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out.
func (p *Provider) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return upstream.TransportError(ctx, p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstream.StatusError(p.name, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return upstream.TransportError(ctx, p.name, err)
		}
		return upstream.Malformed(p.name, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// pipelineID returns the first available text-to-image pipeline.
func (p *Provider) pipelineID(ctx context.Context) (string, error) {
	req, err := p.newRequest(ctx, http.MethodGet, "/key/api/v1/pipelines", nil)
	if err != nil {
		return "", err
	}

	var pipelines []struct {
		ID string `json:"id"`
	}
	if err := p.do(ctx, req, &pipelines); err != nil {
		return "", err
	}
	if len(pipelines) == 0 || pipelines[0].ID == "" {
		return "", types.NewAttemptError(p.name, types.KindNotFound, 0, errors.New("no pipelines available"))
	}
	return pipelines[0].ID, nil
}

func (p *Provider) run(ctx context.Context, pipelineID, prompt string) (string, error) {
	params, err := json.Marshal(map[string]any{
		"type":      "GENERATE",
		"width":     imageSize,
		"height":    imageSize,
		"numImages": 1,
		"generateParams": map[string]string{
			"query": prompt,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("pipeline_id", pipelineID); err != nil {
		return "", fmt.Errorf("write pipeline_id: %w", err)
	}
	if err := writer.WriteField("params", string(params)); err != nil {
		return "", fmt.Errorf("write params: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/key/api/v1/pipeline/run", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		UUID   string `json:"uuid"`
		Status string `json:"status"`
	}
	if err := p.do(ctx, req, &result); err != nil {
		return "", err
	}
	if result.UUID == "" {
		return "", upstream.Malformed(p.name, http.StatusOK, errors.New("missing job uuid"))
	}
	return result.UUID, nil
}

type statusResponse struct {
	UUID             string `json:"uuid"`
	Status           string `json:"status"`
	ErrorDescription string `json:"errorDescription"`
	Result           struct {
		Files    []string `json:"files"`
		Censored bool     `json:"censored"`
	} `json:"result"`
}

func (p *Provider) wait(ctx context.Context, jobID string) (*types.ProviderImage, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		req, err := p.newRequest(ctx, http.MethodGet, "/key/api/v1/pipeline/status/"+jobID, nil)
		if err != nil {
			return nil, err
		}

		var st statusResponse
		if err := p.do(ctx, req, &st); err != nil {
			return nil, err
		}

		switch st.Status {
		case StatusDone:
			return p.decode(st)
		case StatusFail:
			return nil, types.NewAttemptError(p.name, types.KindUnavailable, 0, errors.New("generation failed"))
		}

		select {
		case <-ctx.Done():
			return nil, upstream.TransportError(ctx, p.name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (p *Provider) decode(st statusResponse) (*types.ProviderImage, error) {
	if st.Result.Censored {
		return nil, types.NewAttemptError(p.name, types.KindRejected, 0, errors.New("result censored"))
	}
	if len(st.Result.Files) == 0 {
		return nil, upstream.Malformed(p.name, http.StatusOK, errors.New("no files in result"))
	}

	raw := st.Result.Files[0]
	// Some deployments return a data URI instead of bare base64.
	if i := strings.Index(raw, ";base64,"); strings.HasPrefix(raw, "data:") && i > 0 {
		raw = raw[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, upstream.Malformed(p.name, http.StatusOK, fmt.Errorf("decode file: %w", err))
	}
	return &types.ProviderImage{Data: data}, nil
}
