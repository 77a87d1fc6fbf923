package tattoo

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mandalnilabja/inkgate/internal/generation"
	"github.com/mandalnilabja/inkgate/internal/metrics"
	"github.com/mandalnilabja/inkgate/internal/prompt"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware"
	"github.com/mandalnilabja/inkgate/internal/transport/http/middleware/ratelimit"
	"github.com/mandalnilabja/inkgate/internal/types"
)

// maxBodyBytes bounds the request body. A 300 character description
// needs well under 2KB even fully escaped.
const maxBodyBytes = 16 << 10

// previewLength is how much of the sanitized prompt goes into log lines.
const previewLength = 100

// msgBadRequest answers bodies that are not a JSON object.
const msgBadRequest = "Ungültige Anfrage."

// Generate handles POST /api/generate-tattoo. Every path answers with a
// GenerateResponse carrying an image.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	requestID := middleware.GetRequestID(r.Context())
	client := ratelimit.HashKey(h.ClientKey(r))

	defer func() {
		if rec := recover(); rec != nil {
			h.Logger.Error("generate request panicked",
				"request_id", requestID,
				"client", client,
				"panic", rec,
			)
			writeResponse(w, http.StatusInternalServerError, types.GenerateResponse{
				Image:      h.Fallbacks.Icon(),
				IsFallback: true,
				Error:      generation.MsgInternalError,
			})
			h.finish(outcomeRecord{
				requestID: requestID,
				outcome:   metrics.OutcomeError,
				status:    http.StatusInternalServerError,
				fallback:  true,
				start:     start,
			})
		}
	}()

	description, err := decodeDescription(w, r)
	if err != nil {
		h.reject(w, requestID, client, start, err)
		return
	}

	if err := h.Rules.Validate(description); err != nil {
		h.reject(w, requestID, client, start, err)
		return
	}

	built := h.Rules.Build(description)
	h.Logger.Info("generating tattoo",
		"request_id", requestID,
		"client", client,
		"prompt_preview", prompt.Preview(built, previewLength),
		"prompt_length", len([]rune(built)),
	)

	res := h.Generator.Generate(r.Context(), built)

	writeResponse(w, http.StatusOK, types.GenerateResponse{
		Image:      res.Image,
		IsFallback: res.IsFallback,
		Message:    res.Message,
	})

	outcome := metrics.OutcomeGenerated
	if res.IsFallback {
		outcome = metrics.OutcomeFallback
	}
	h.Logger.Info("tattoo request finished",
		"request_id", requestID,
		"client", client,
		"outcome", outcome,
		"provider", res.Provider,
		"attempts", len(res.Attempts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	h.finish(outcomeRecord{
		requestID: requestID,
		outcome:   outcome,
		status:    http.StatusOK,
		fallback:  res.IsFallback,
		provider:  res.Provider,
		attempts:  len(res.Attempts),
		prompt:    built,
		start:     start,
	})
}

// decodeDescription reads the body and extracts the description. A
// missing body counts as a missing description.
func decodeDescription(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", prompt.RequiredError()
		}
		return "", err
	}

	description, err := req.DescriptionText()
	if err != nil {
		return "", prompt.RequiredError()
	}
	return description, nil
}

// reject answers invalid input with 400, a placeholder and the reason.
// The raw description is never logged.
func (h *Handlers) reject(w http.ResponseWriter, requestID, client string, start time.Time, err error) {
	msg := msgBadRequest
	attrs := []any{"request_id", requestID, "client", client}

	var verr *prompt.ValidationError
	if errors.As(err, &verr) {
		msg = verr.Message
		attrs = append(attrs, "reason", verr.Reason, "length", verr.Length)
	} else {
		attrs = append(attrs, "reason", "malformed_body")
	}
	h.Logger.Info("tattoo request rejected", attrs...)

	writeResponse(w, http.StatusBadRequest, types.GenerateResponse{
		Image:      h.Fallbacks.Image(),
		IsFallback: true,
		Error:      msg,
	})
	h.finish(outcomeRecord{
		requestID: requestID,
		outcome:   metrics.OutcomeInvalid,
		status:    http.StatusBadRequest,
		fallback:  true,
		start:     start,
	})
}

func writeResponse(w http.ResponseWriter, status int, resp types.GenerateResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
