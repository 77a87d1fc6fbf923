// Package tokenizer estimates how many model tokens a prompt occupies.
// Stable Diffusion's CLIP text encoder silently drops everything past 77
// tokens, so long prompts are worth flagging in the logs.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens in a prompt for a model family.
type Counter interface {
	CountTokens(text string, model string) (int, error)
}

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base"
	EncodingO200kBase  = "o200k_base"
)

// ClipTokenLimit is the CLIP text encoder context length.
const ClipTokenLimit = 77

// retryFailedAfter delays another load attempt of an encoding that failed,
// e.g. because the BPE file could not be downloaded.
const retryFailedAfter = 10 * time.Minute

// modelEncoding pairs a prefix with its encoding.
type modelEncoding struct {
	prefix   string
	encoding string
}

// modelEncodings lists model prefixes and their encodings.
// Longer prefixes first to avoid partial matches.
var modelEncodings = []modelEncoding{
	{"gpt-image", EncodingO200kBase},
	{"dall-e", EncodingCL100kBase},
	{"gpt-4o", EncodingO200kBase},
}

// tokenLimits maps a provider kind to the prompt token budget of its
// text encoder. Kinds without an entry have no known limit.
var tokenLimits = map[string]int{
	"huggingface": ClipTokenLimit,
}

// TiktokenTokenizer implements Counter using tiktoken-go.
type TiktokenTokenizer struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
	failed    map[string]time.Time
	now       func() time.Time
}

// New creates a new TiktokenTokenizer.
func New() *TiktokenTokenizer {
	return &TiktokenTokenizer{
		encodings: make(map[string]*tiktoken.Tiktoken),
		failed:    make(map[string]time.Time),
		now:       time.Now,
	}
}

// getEncoding returns the tiktoken encoding for a model, with caching.
func (t *TiktokenTokenizer) getEncoding(model string) (*tiktoken.Tiktoken, error) {
	encodingName := resolveEncoding(model)

	t.mu.RLock()
	enc, ok := t.encodings[encodingName]
	failedAt, failed := t.failed[encodingName]
	t.mu.RUnlock()
	if ok {
		return enc, nil
	}
	if failed && t.now().Sub(failedAt) < retryFailedAfter {
		return nil, fmt.Errorf("encoding %s unavailable", encodingName)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if enc, ok = t.encodings[encodingName]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		t.failed[encodingName] = t.now()
		return nil, fmt.Errorf("load encoding %s: %w", encodingName, err)
	}
	delete(t.failed, encodingName)
	t.encodings[encodingName] = enc
	return enc, nil
}

// resolveEncoding determines the encoding name for a model.
func resolveEncoding(model string) string {
	modelLower := strings.ToLower(model)

	for _, me := range modelEncodings {
		if strings.HasPrefix(modelLower, me.prefix) {
			return me.encoding
		}
	}

	// CLIP uses its own BPE; cl100k_base is a close enough proxy for
	// English prompts.
	return EncodingCL100kBase
}

// CountTokens counts tokens in a text string for a given model.
func (t *TiktokenTokenizer) CountTokens(text string, model string) (int, error) {
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Estimate is a token count checked against a provider's budget.
type Estimate struct {
	Tokens int
	Limit  int
}

// OverLimit reports whether the prompt exceeds a known budget.
func (e Estimate) OverLimit() bool {
	return e.Limit > 0 && e.Tokens > e.Limit
}

// Limit returns the prompt token budget for a provider kind, 0 if unknown.
func Limit(kind string) int {
	return tokenLimits[kind]
}

// EstimateFor counts text with c and attaches the budget of kind.
func EstimateFor(c Counter, text, kind, model string) (Estimate, error) {
	n, err := c.CountTokens(text, model)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Tokens: n, Limit: Limit(kind)}, nil
}
