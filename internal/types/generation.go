package types

import (
	"encoding/json"
	"errors"
)

// ErrDescriptionNotString is returned when the description field holds a
// JSON value other than a string.
var ErrDescriptionNotString = errors.New("description is not a string")

// GenerateRequest is the body of POST /api/generate-tattoo.
// Description is kept raw so a non-string value can be told apart from
// a missing one.
type GenerateRequest struct {
	Description json.RawMessage `json:"description"`
}

// DescriptionText returns the description as a string. A missing or null
// description yields "" and no error.
func (r *GenerateRequest) DescriptionText() (string, error) {
	if len(r.Description) == 0 || string(r.Description) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(r.Description, &s); err != nil {
		return "", ErrDescriptionNotString
	}
	return s, nil
}

// GenerateResponse is returned for every generate request, including
// validation failures, rate limiting and internal faults.
type GenerateResponse struct {
	Image      string `json:"image"`
	IsFallback bool   `json:"isFallback"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ProviderImage is a successful provider payload. Exactly one of Data or
// URL is set.
type ProviderImage struct {
	Data        []byte
	URL         string
	ContentType string
}
