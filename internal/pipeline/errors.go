package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	// ErrParse marks malformed subtitle syntax; it aborts the run before
	// any translation work starts.
	ErrParse ErrorType = iota
	// ErrCheckpoint marks resume-state I/O failures; always fatal.
	ErrCheckpoint
	// ErrExtract covers the media extraction collaborator.
	ErrExtract
	// ErrProvider covers transport/backend failures; individual batches
	// are retried, the type only surfaces when retries are exhausted.
	ErrProvider
	// ErrValidation covers wrong-count or echoed-input batch results.
	ErrValidation
	ErrFileWrite
	ErrConfig
)

type PipelineError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func WrapError(err error, errorType ErrorType, message string) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   err,
	}
}

func (e *PipelineError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrParse:
		return "Parse"
	case ErrCheckpoint:
		return "Checkpoint"
	case ErrExtract:
		return "Extract"
	case ErrProvider:
		return "Provider"
	case ErrValidation:
		return "Validation"
	case ErrFileWrite:
		return "FileWrite"
	case ErrConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Type == errorType
	}
	return false
}
