package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for the failure kinds callers must be able to distinguish
const (
	ErrInvalidInput        = "INVALID_INPUT"
	ErrUnsupportedLanguage = "UNSUPPORTED_LANGUAGE"
	ErrStorageFailure      = "STORAGE_FAILURE"
	ErrTranslationFailure  = "TRANSLATION_FAILURE"
	ErrRateLimit           = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer      = "INTERNAL_SERVER_ERROR"
)

// ServiceError carries one of the error codes above through the service layer
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError
func NewServiceError(code, message string, err error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewInvalidInputError reports a rejected request; nothing was changed
func NewInvalidInputError(message string, err error) *ServiceError {
	return NewServiceError(ErrInvalidInput, message, err)
}

// NewUnsupportedLanguageError reports a translate request for a language outside the supported set
func NewUnsupportedLanguageError(language string) *ServiceError {
	return NewServiceError(ErrUnsupportedLanguage, fmt.Sprintf("unsupported language %q", language), nil)
}

// NewStorageError reports that the persistence layer could not complete op
func NewStorageError(op string, err error) *ServiceError {
	return NewServiceError(ErrStorageFailure, fmt.Sprintf("storage %s failed", op), err)
}

// NewTranslationError reports a failure of the external translation resource
func NewTranslationError(err error) *ServiceError {
	return NewServiceError(ErrTranslationFailure, "translation failed", err)
}

// CodeOf returns the error code carried by err, or ErrInternalServer when err
// is not a ServiceError.
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrInternalServer
}

// IsCode reports whether err carries the given code
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// APIError is the error body written at the HTTP boundary
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
