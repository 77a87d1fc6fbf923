// Package generation walks the provider chain for a prompt and always
// produces an image, real or placeholder.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandalnilabja/inkgate/internal/provider"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// OutcomeSuccess labels a successful attempt in metrics.
const OutcomeSuccess = "success"

// Recorder receives one observation per provider attempt.
type Recorder interface {
	ObserveAttempt(provider, outcome string, d time.Duration)
}

// Attempt records one provider call. Kind is empty on success.
type Attempt struct {
	Provider   string
	Kind       types.AttemptKind
	StatusCode int
	Duration   time.Duration
}

// Result is the outcome of Generate. Image is never empty.
type Result struct {
	Image      string
	IsFallback bool
	Message    string
	// Provider is the provider that produced Image, empty on fallback.
	Provider string
	Attempts []Attempt
}

// Orchestrator tries the configured providers in order.
type Orchestrator struct {
	chain     []provider.Entry
	fallbacks *Fallbacks
	recorder  Recorder
	logger    *slog.Logger
}

// New creates an orchestrator. recorder may be nil.
func New(chain []provider.Entry, fallbacks *Fallbacks, recorder Recorder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{chain: chain, fallbacks: fallbacks, recorder: recorder, logger: logger}
}

// Chain returns the provider chain in attempt order.
func (o *Orchestrator) Chain() []provider.Entry { return o.chain }

// Fallbacks returns the placeholder source.
func (o *Orchestrator) Fallbacks() *Fallbacks { return o.fallbacks }

// Generate runs the chain for prompt. It does not return errors: every
// failure ends in a fallback result.
func (o *Orchestrator) Generate(ctx context.Context, prompt string) *Result {
	res := &Result{}

	for _, entry := range o.chain {
		if ctx.Err() != nil {
			break
		}

		name := entry.Provider.Name()
		start := time.Now()
		img, err := o.attempt(ctx, entry, prompt)

		var ref string
		if err == nil {
			ref, err = imageReference(img)
			if err != nil {
				err = types.NewAttemptError(name, types.KindMalformed, 0, err)
			}
		}

		a := Attempt{Provider: name, Duration: time.Since(start)}
		if err != nil {
			var ae *types.AttemptError
			if errors.As(err, &ae) {
				a.Kind, a.StatusCode = ae.Kind, ae.StatusCode
			} else {
				a.Kind = types.KindUnavailable
			}
		}
		res.Attempts = append(res.Attempts, a)
		o.observe(a)

		if err == nil {
			o.logger.Info("provider succeeded", "provider", name, "duration_ms", a.Duration.Milliseconds())
			res.Image = ref
			res.Provider = name
			return res
		}

		o.logger.Warn("provider attempt failed",
			"provider", name,
			"kind", a.Kind,
			"status", a.StatusCode,
			"duration_ms", a.Duration.Milliseconds(),
			"error", err,
		)
	}

	res.Image = o.fallbacks.Image()
	res.IsFallback = true
	res.Message = fallbackMessage(res.Attempts)
	return res
}

// attempt calls one provider under its timeout. A provider that ignores
// cancellation is abandoned when the timeout fires; its late result is
// dropped into the buffered channel and discarded.
func (o *Orchestrator) attempt(ctx context.Context, entry provider.Entry, prompt string) (*types.ProviderImage, error) {
	name := entry.Provider.Name()
	if entry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, entry.Timeout)
		defer cancel()
	}

	type outcome struct {
		img *types.ProviderImage
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: types.NewAttemptError(name, types.KindMalformed, 0, fmt.Errorf("provider panic: %v", r))}
			}
		}()
		img, err := entry.Provider.Attempt(ctx, prompt)
		done <- outcome{img: img, err: err}
	}()

	select {
	case out := <-done:
		return out.img, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, types.NewAttemptError(name, types.KindTimeout, 0, ctx.Err())
		}
		return nil, types.NewAttemptError(name, types.KindUnavailable, 0, ctx.Err())
	}
}

func (o *Orchestrator) observe(a Attempt) {
	if o.recorder == nil {
		return
	}
	outcome := OutcomeSuccess
	if a.Kind != "" {
		outcome = string(a.Kind)
	}
	o.recorder.ObserveAttempt(a.Provider, outcome, a.Duration)
}
