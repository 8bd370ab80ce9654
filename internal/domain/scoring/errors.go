package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds for scoring errors.
var (
	ErrInvalidProfile = errors.New("invalid profile")
)

// ProfileError names the profile field that failed resolution.
type ProfileError struct {
	Field  string
	Reason string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidProfile, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidProfile).
func (e *ProfileError) Unwrap() error { return ErrInvalidProfile }

func missing(field string) error {
	return &ProfileError{Field: field, Reason: "missing required field"}
}

func malformed(field, reason string) error {
	return &ProfileError{Field: field, Reason: reason}
}
