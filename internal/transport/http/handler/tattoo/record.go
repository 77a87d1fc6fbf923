package tattoo

import (
	"context"
	"time"

	"github.com/mandalnilabja/inkgate/internal/storage"
	"github.com/mandalnilabja/inkgate/internal/tokenizer"
)

// logWriteTimeout bounds one generation log insert.
const logWriteTimeout = 5 * time.Second

// outcomeRecord describes a finished request for metrics and the
// generation log. prompt is only used for the token estimate.
type outcomeRecord struct {
	requestID string
	outcome   string
	status    int
	fallback  bool
	provider  string
	attempts  int
	prompt    string
	start     time.Time
}

// finish records metrics inline and writes the generation log in the
// background so the response is never held up by storage.
func (h *Handlers) finish(rec outcomeRecord) {
	d := h.now().Sub(rec.start)
	if h.Metrics != nil {
		h.Metrics.ObserveRequest(rec.outcome, d)
	}
	if h.Log == nil && (h.Tokenizer == nil || rec.prompt == "") {
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.estimateTokens(rec.requestID, rec.prompt)
		h.writeLog(rec, d)
	}()
}

func (h *Handlers) writeLog(rec outcomeRecord, d time.Duration) {
	if h.Log == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()

	err := h.Log.LogGeneration(ctx, &storage.GenerationLog{
		RequestID:  rec.requestID,
		Provider:   rec.provider,
		Outcome:    rec.outcome,
		StatusCode: rec.status,
		IsFallback: rec.fallback,
		Attempts:   rec.attempts,
		DurationMs: d.Milliseconds(),
		CreatedAt:  rec.start.UTC(),
	})
	if err != nil {
		h.Logger.Warn("failed to write generation log", "request_id", rec.requestID, "error", err)
	}
}

// estimateTokens warns when the prompt is longer than the first
// provider's text encoder accepts; the excess is silently dropped there.
func (h *Handlers) estimateTokens(requestID, prompt string) {
	if h.Tokenizer == nil || prompt == "" {
		return
	}
	chain := h.Generator.Chain()
	if len(chain) == 0 {
		return
	}
	first := chain[0].Provider

	est, err := tokenizer.EstimateFor(h.Tokenizer, prompt, first.Kind(), "")
	if err != nil {
		h.Logger.Debug("token estimate unavailable", "request_id", requestID, "error", err)
		return
	}
	if est.OverLimit() {
		h.Logger.Warn("prompt exceeds provider token limit",
			"request_id", requestID,
			"provider", first.Name(),
			"tokens", est.Tokens,
			"limit", est.Limit,
		)
	}
}
