package poll_errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTooLarge           = errors.New("file too large")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUploadFailed       = errors.New("media upload failed")
	ErrNoActiveQuestion   = errors.New("no active question")
	ErrAlreadySubmitted   = errors.New("response already submitted")
	ErrQuestionChanged    = errors.New("active question changed")
)

// ValidationError is a reported precondition failure: the write was never
// attempted. Field names the missing input; MissingIndices lists every
// option index lacking a rating when the failure is per option.
type ValidationError struct {
	Field          string
	Message        string
	MissingIndices []int
	Cause          error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if len(e.MissingIndices) == 0 {
		return e.Message
	}
	idx := make([]string, len(e.MissingIndices))
	for i, v := range e.MissingIndices {
		idx[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s (missing: %s)", e.Message, strings.Join(idx, ", "))
}

func (e *ValidationError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrInvalidInput
}

// AsValidation reports whether err carries a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
