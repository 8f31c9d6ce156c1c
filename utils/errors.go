package utils

import "fmt"

// InvalidInputError flags a user-correctable validation failure. It is
// raised before anything is persisted or any external call is made.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// NoAssessmentError means generation was requested for a user with no
// usable source assessment.
type NoAssessmentError struct {
	UserID uint
}

func (e *NoAssessmentError) Error() string {
	return "no assessment found; submit a risk assessment first"
}

// StorageError wraps a persistence failure that survived the internal
// retry. Never swallowed: callers surface it as a server error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExternalServiceKind classifies a failure of an external collaborator
// (LLM API, OCR). Transient kinds are retryable.
type ExternalServiceKind string

const (
	ExternalTimeout         ExternalServiceKind = "timeout"
	ExternalRateLimited     ExternalServiceKind = "rate_limited"
	ExternalUnauthorized    ExternalServiceKind = "unauthorized"
	ExternalBadRequest      ExternalServiceKind = "bad_request"
	ExternalServerError     ExternalServiceKind = "server_error"
	ExternalInvalidResponse ExternalServiceKind = "invalid_response"
)

type ExternalServiceError struct {
	Service    string
	Kind       ExternalServiceKind
	Message    string
	StatusCode int
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s error (%s): %s", e.Service, e.Kind, e.Message)
}

func (e *ExternalServiceError) Retryable() bool {
	switch e.Kind {
	case ExternalTimeout, ExternalRateLimited, ExternalServerError:
		return true
	}
	return false
}

func (e *ExternalServiceError) HTTPStatusCode() int { return e.StatusCode }

// GenerationError means the model answered but the content failed
// validation (empty or missing the expected plan structure). The artifact
// is never persisted in that case.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Reason
}
