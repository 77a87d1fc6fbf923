// Package upstream holds the HTTP response handling shared by the
// provider clients.
package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/mandalnilabja/inkgate/internal/types"
)

const (
	// MaxErrorBody caps how much of an error response is read.
	MaxErrorBody = 4 << 10
	// MaxImageBody caps how much of an image response is read.
	MaxImageBody = 16 << 20
)

// ErrImageTooLarge is returned when a payload exceeds MaxImageBody.
var ErrImageTooLarge = errors.New("image payload too large")

// StatusError converts a non-2xx response into an AttemptError. The body
// is consumed but never included in the error text.
func StatusError(provider string, resp *http.Response) *types.AttemptError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
	kind := types.Classify(resp.StatusCode, body)
	return types.NewAttemptError(provider, kind, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
}

// TransportError classifies an error returned by http.Client.Do or while
// reading a body. Context expiry maps to a timeout, anything else to an
// unavailable provider.
func TransportError(ctx context.Context, provider string, err error) *types.AttemptError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return types.NewAttemptError(provider, types.KindTimeout, 0, err)
	}
	return types.NewAttemptError(provider, types.KindUnavailable, 0, err)
}

// Unconfigured is the error for a provider without credentials.
func Unconfigured(provider string) *types.AttemptError {
	return types.NewAttemptError(provider, types.KindUnconfigured, 0, types.ErrUnconfigured)
}

// Malformed wraps an unexpected 2xx payload.
func Malformed(provider string, status int, err error) *types.AttemptError {
	return types.NewAttemptError(provider, types.KindMalformed, status, err)
}

// ReadImage reads at most MaxImageBody bytes of r.
func ReadImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBody {
		return nil, ErrImageTooLarge
	}
	return data, nil
}
