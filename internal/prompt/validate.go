// Package prompt validates caller-supplied tattoo descriptions and turns
// them into provider-ready prompts.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is matched by every *ValidationError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Reason identifies which rule a description broke.
type Reason string

const (
	ReasonRequired       Reason = "required"
	ReasonMinLength      Reason = "min_length"
	ReasonMaxLength      Reason = "max_length"
	ReasonInvalidContent Reason = "invalid_content"
)

// ValidationError carries the reason and the user-facing (German) message.
type ValidationError struct {
	Reason  Reason
	Length  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonMaxLength || e.Reason == ReasonMinLength {
		return fmt.Sprintf("invalid input: %s (%d characters)", e.Reason, e.Length)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// denylist matches script and markup injection attempts.
var denylist = regexp.MustCompile(`(?i)(<script|javascript:|data:|vbscript:|onload=|onerror=)`)

// Rules bounds accepted descriptions. Lengths count characters, not bytes.
type Rules struct {
	MinLength int
	MaxLength int
}

// DefaultRules is 5 to 300 characters.
var DefaultRules = Rules{MinLength: 5, MaxLength: 300}

// Validate checks a raw description. The raw text is never included in
// the returned error.
func (r Rules) Validate(description string) error {
	if description == "" {
		return &ValidationError{
			Reason:  ReasonRequired,
			Message: "Beschreibung ist erforderlich.",
		}
	}

	n := utf8.RuneCountInString(strings.TrimSpace(description))
	if n < r.MinLength {
		return r.tooShort(n)
	}
	if n > r.MaxLength {
		return &ValidationError{
			Reason:  ReasonMaxLength,
			Length:  n,
			Message: fmt.Sprintf("Prompt darf maximal %d Zeichen lang sein. Aktuell: %d Zeichen.", r.MaxLength, n),
		}
	}

	if denylist.MatchString(description) {
		return &ValidationError{
			Reason:  ReasonInvalidContent,
			Length:  n,
			Message: "Ungültiger Inhalt in der Beschreibung.",
		}
	}

	// Quotes and commas alone pass the raw length check but build to
	// nothing usable.
	if built := utf8.RuneCountInString(r.Build(description)); built < r.MinLength {
		return r.tooShort(built)
	}
	return nil
}

func (r Rules) tooShort(n int) *ValidationError {
	return &ValidationError{
		Reason:  ReasonMinLength,
		Length:  n,
		Message: fmt.Sprintf("Beschreibung muss mindestens %d Zeichen lang sein.", r.MinLength),
	}
}

// RequiredError is the error used when the request carries no usable
// description at all, e.g. a non-string JSON value.
func RequiredError() *ValidationError {
	return &ValidationError{Reason: ReasonRequired, Message: "Beschreibung ist erforderlich."}
}
