package agent

import (
	"errors"
	"fmt"
)

// ErrorKind classifies run failures by the contract that was broken.
type ErrorKind string

const (
	// ErrorKindData indicates unusable input: unreadable file, missing
	// target column, or no rows left after target-null filtering.
	ErrorKindData ErrorKind = "data"

	// ErrorKindPlanning indicates the planning contract could not be met,
	// such as target inference yielding no candidate.
	ErrorKindPlanning ErrorKind = "planning"

	// ErrorKindIO indicates the output directory or memory file could not
	// be written.
	ErrorKindIO ErrorKind = "io"

	// ErrorKindModel indicates a candidate failed to fit. One bad candidate
	// aborts the iteration; partial results are never reported.
	ErrorKindModel ErrorKind = "model"
)

// AgentError is a classified run error with stage context.
type AgentError struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Stage names the run stage where the error occurred, if known.
	Stage string `json:"stage,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Stage != "" {
		msg = fmt.Sprintf("[%s] %s (stage=%s)", e.Kind, e.Message, e.Stage)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *AgentError) Is(target error) bool {
	t, ok := target.(*AgentError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithStage adds stage context to an error.
func (e *AgentError) WithStage(stage string) *AgentError {
	e.Stage = stage
	return e
}

// NewDataError creates a new data error.
func NewDataError(message string, err error) *AgentError {
	return &AgentError{Kind: ErrorKindData, Message: message, Err: err}
}

// NewPlanningError creates a new planning error.
func NewPlanningError(message string, err error) *AgentError {
	return &AgentError{Kind: ErrorKindPlanning, Message: message, Err: err}
}

// NewIOError creates a new I/O error.
func NewIOError(message string, err error) *AgentError {
	return &AgentError{Kind: ErrorKindIO, Message: message, Err: err}
}

// NewModelError creates a new model error.
func NewModelError(message string, err error) *AgentError {
	return &AgentError{Kind: ErrorKindModel, Message: message, Err: err}
}

func isKind(err error, kind ErrorKind) bool {
	var e *AgentError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsDataError returns true if the error is classified as a data error.
func IsDataError(err error) bool { return isKind(err, ErrorKindData) }

// IsPlanningError returns true if the error is classified as a planning error.
func IsPlanningError(err error) bool { return isKind(err, ErrorKindPlanning) }

// IsIOError returns true if the error is classified as an I/O error.
func IsIOError(err error) bool { return isKind(err, ErrorKindIO) }

// IsModelError returns true if the error is classified as a model error.
func IsModelError(err error) bool { return isKind(err, ErrorKindModel) }
