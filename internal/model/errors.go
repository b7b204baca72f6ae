package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

// ValidationError is a malformed or missing request input (400).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError is a missing resource or a precondition on stored state (404).
type NotFoundError struct {
	Field   string
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a new not-found error
func NewNotFoundError(field, message string) *NotFoundError {
	return &NotFoundError{Field: field, Message: message}
}

// UpstreamError wraps a failure from an LLM, TTS engine or peer participant.
type UpstreamError struct {
	Service string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "upstream call failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError creates a new upstream error
func NewUpstreamError(service, message string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Message: message, Err: err}
}

// TurnError reports that a participant was asked to speak out of turn.
type TurnError struct {
	Participant string
	Message     string
}

func (e *TurnError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("not %s's turn", e.Participant)
}

// CapacityError reports a write that would exceed the document ceiling (413).
type CapacityError struct {
	Limit   int
	Size    int
	Message string
}

func (e *CapacityError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Size > 0 {
		return fmt.Sprintf("document too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
	}
	return fmt.Sprintf("document too large: exceeds limit of %d bytes", e.Limit)
}

// Evaluation format kinds.
const (
	KindInvalidJSON      = "invalid_json"
	KindInvalidStructure = "invalid_structure"
)

// Violation names one failed constraint in an LLM evaluation payload.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// EvaluationFormatError reports an LLM evaluation that could not be accepted.
type EvaluationFormatError struct {
	Kind       string
	Violations []Violation
	Err        error
}

func (e *EvaluationFormatError) Error() string {
	switch e.Kind {
	case KindInvalidJSON:
		if e.Err != nil {
			return fmt.Sprintf("invalid JSON response: %v", e.Err)
		}
		return "invalid JSON response"
	default:
		parts := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
		}
		return "invalid response structure: " + strings.Join(parts, "; ")
	}
}

func (e *EvaluationFormatError) Unwrap() error { return e.Err }

// Fields lists the field paths of every violation.
func (e *EvaluationFormatError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func IsTurnError(err error) bool {
	var te *TurnError
	return errors.As(err, &te)
}

func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}

func IsEvaluationFormatError(err error) bool {
	var fe *EvaluationFormatError
	return errors.As(err, &fe)
}
