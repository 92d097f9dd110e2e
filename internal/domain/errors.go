package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidTicker        = NewDomainError(ErrCodeValidation, "ticker is not a tracked company")
	ErrInvalidPeriod        = NewDomainError(ErrCodeValidation, "period is outside the coverage window")
	ErrInvalidSource        = NewDomainError(ErrCodeValidation, "invalid transcript source")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidEmbeddingJob  = NewDomainError(ErrCodeValidation, "invalid embedding job")
)

// Not found errors
var (
	ErrTranscriptNotFound = NewDomainError(ErrCodeNotFound, "transcript not found")
	ErrJobNotFound        = NewDomainError(ErrCodeNotFound, "scheduled job not found")
	ErrCompanyNotFound    = NewDomainError(ErrCodeNotFound, "company not found")
)

// Availability errors
var (
	ErrLLMUnavailable       = NewDomainError(ErrCodeUnavailable, "language model endpoint is unreachable")
	ErrExtractionFailed     = NewDomainError(ErrCodeInternalError, "earnings data extraction failed")
	ErrVectorStoreOperation = NewDomainError(ErrCodeInternalError, "vector store operation failed")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)
