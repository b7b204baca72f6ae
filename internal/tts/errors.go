package tts

import "errors"

// ErrEmptyText is returned when attempting to synthesize empty text.
var ErrEmptyText = errors.New("text cannot be empty")

// SynthesisError provides detailed error information from TTS providers.
type SynthesisError struct {
	Provider  string
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

func (e *SynthesisError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SynthesisError) Unwrap() error { return e.Cause }

// NewSynthesisError creates a new SynthesisError.
func NewSynthesisError(provider, code, message string, cause error, retryable bool) *SynthesisError {
	return &SynthesisError{Provider: provider, Code: code, Message: message, Cause: cause, Retryable: retryable}
}

func retryableStatus(status int) bool {
	return status == 429 || status >= 500
}
