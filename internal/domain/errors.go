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

// Is reports whether target is a DomainError with the same code and message,
// so a sentinel still matches after WithCause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of the error carrying err as its cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
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
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Validation errors
var (
	ErrInvalidEntryType          = NewDomainError(ErrCodeValidation, "invalid knowledge entry type")
	ErrInvalidTone               = NewDomainError(ErrCodeValidation, "invalid stakeholder tone")
	ErrInvalidPhase              = NewDomainError(ErrCodeValidation, "invalid engagement phase")
	ErrInvalidDeliverableStatus  = NewDomainError(ErrCodeValidation, "invalid deliverable status")
	ErrInvalidEmbeddingDimension = NewDomainError(ErrCodeValidation, "embedding has wrong dimension")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyContent              = NewDomainError(ErrCodeValidation, "content cannot be empty")
	ErrNoPrioritiesDefined       = NewDomainError(ErrCodeValidation, "stakeholder has no priorities defined")
	ErrMalformedGeneratedContent = NewDomainError(ErrCodeValidation, "generated content could not be mapped to sections")
	ErrStakeholderOtherClient    = NewDomainError(ErrCodeValidation, "stakeholder does not belong to client")
)

// Not found errors
var (
	ErrClientNotFound         = NewDomainError(ErrCodeNotFound, "client not found")
	ErrStakeholderNotFound    = NewDomainError(ErrCodeNotFound, "stakeholder not found")
	ErrEngagementNotFound     = NewDomainError(ErrCodeNotFound, "engagement not found")
	ErrKnowledgeEntryNotFound = NewDomainError(ErrCodeNotFound, "knowledge entry not found")
	ErrEmbeddingNotFound      = NewDomainError(ErrCodeNotFound, "embedding not found")
	ErrDeliverableNotFound    = NewDomainError(ErrCodeNotFound, "deliverable not found")
	ErrArchiveNotFound        = NewDomainError(ErrCodeNotFound, "deliverable has no archive")
)

// Already exists errors
var (
	ErrEmbeddingAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "embedding already exists")
)

// Operation errors
var (
	ErrDeliverableAlreadyApproved = NewDomainError(ErrCodeInvalidOperation, "deliverable is already approved")
	ErrApprovalRequired           = NewDomainError(ErrCodeInvalidOperation, "use the approve operation to approve a deliverable")
	ErrDeliverableLocked          = NewDomainError(ErrCodeInvalidOperation, "approved deliverables can only move to final")
)

// Availability errors
var (
	ErrModelUnavailable      = NewDomainError(ErrCodeUnavailable, "embedding model unavailable")
	ErrGenerationUnavailable = NewDomainError(ErrCodeUnavailable, "content generation unavailable")
	ErrStorageUnavailable    = NewDomainError(ErrCodeUnavailable, "archive storage unavailable")
)
