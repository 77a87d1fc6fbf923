package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AttemptKind classifies why a provider attempt did not produce an image.
type AttemptKind string

const (
	// KindUnavailable: provider overloaded or failing (429, 5xx, network).
	KindUnavailable AttemptKind = "unavailable"
	// KindLoading: the model is cold and still being loaded by the provider.
	KindLoading AttemptKind = "loading"
	// KindNotFound: endpoint or model missing, or access refused (404, 403, 401).
	KindNotFound AttemptKind = "not_found"
	// KindRejected: any other 4xx, usually a prompt the provider refused.
	KindRejected AttemptKind = "rejected"
	// KindMalformed: 2xx response without a recognizable image.
	KindMalformed AttemptKind = "malformed"
	KindTimeout   AttemptKind = "timeout"
	// KindUnconfigured: credential missing, provider never contacted.
	KindUnconfigured AttemptKind = "unconfigured"
)

// Surfaced reports whether a failure of this kind, when it is the last one
// in the chain, should be explained to the user.
func (k AttemptKind) Surfaced() bool {
	return k == KindUnavailable || k == KindLoading || k == KindTimeout
}

// ErrUnconfigured is returned by providers whose credential is absent.
var ErrUnconfigured = errors.New("provider credential not configured")

// AttemptError describes one failed provider attempt.
type AttemptError struct {
	Provider   string
	Kind       AttemptKind
	StatusCode int
	Err        error
}

func (e *AttemptError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AttemptError) Unwrap() error { return e.Err }

// NewAttemptError builds an AttemptError.
func NewAttemptError(provider string, kind AttemptKind, status int, err error) *AttemptError {
	return &AttemptError{Provider: provider, Kind: kind, StatusCode: status, Err: err}
}

// Classify maps a non-2xx provider response to an attempt kind. Missing
// or refused endpoints are always KindNotFound; for any other status the
// body is inspected for the "model is loading" marker some hosts return
// with 503.
func Classify(status int, body []byte) AttemptKind {
	switch status {
	case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
		return KindNotFound
	}
	if strings.Contains(strings.ToLower(string(body)), "loading") {
		return KindLoading
	}
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return KindUnavailable
	case status >= 400:
		return KindRejected
	default:
		return KindMalformed
	}
}

// KindOf extracts the attempt kind from err, or KindUnavailable when err
// is not an AttemptError.
func KindOf(err error) AttemptKind {
	var ae *AttemptError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnavailable
}
