// Package errors provides the error taxonomy shared by the chat engine, its
// adapters and the workflow worker.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Conversational codes. These never reach the end user as failures.
const (
	ErrCodeMissingSignal        ErrorCode = "MISSING_SIGNAL"
	ErrCodeNoLocalMatch         ErrorCode = "NO_LOCAL_MATCH"
	ErrCodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeMalformedCatalogRow  ErrorCode = "MALFORMED_CATALOG_ROW"
)

// Infrastructure codes.
const (
	ErrCodeCatalogLoadFailed   ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeSessionStoreFailed  ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeCacheBackendFailed  ErrorCode = "CACHE_BACKEND_FAILED"
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeTimeout             ErrorCode = "TIMEOUT_ERROR"
	ErrCodeAuthenticationError ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons by code.
var (
	ErrMissingSignal      = &StandardError{Code: ErrCodeMissingSignal}
	ErrNoLocalMatch       = &StandardError{Code: ErrCodeNoLocalMatch}
	ErrExternalService    = &StandardError{Code: ErrCodeExternalServiceError}
	ErrMalformedRow       = &StandardError{Code: ErrCodeMalformedCatalogRow}
	ErrCatalogLoadFailed  = &StandardError{Code: ErrCodeCatalogLoadFailed}
	ErrSessionStoreFailed = &StandardError{Code: ErrCodeSessionStoreFailed}
	ErrCacheBackendFailed = &StandardError{Code: ErrCodeCacheBackendFailed}
	ErrInvalidRequest     = &StandardError{Code: ErrCodeInvalidRequest}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMissingSignalError marks a conversational branch: the message lacks a signal.
func NewMissingSignalError(signal string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingSignal,
		Message:   "Required signal not present in message",
		Details:   fmt.Sprintf("signal: %s", signal),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoLocalMatchError reports that ranking produced no candidates.
func NewNoLocalMatchError(category, location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoLocalMatch,
		Message:   "No catalog record matched the request",
		Details:   fmt.Sprintf("category: %s, location: %s", category, location),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError wraps a failed call to an outside service.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalServiceError,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTimeoutError wraps a call that exceeded its deadline.
func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAuthenticationError reports rejected credentials.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationError,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedCatalogRowError describes a skipped catalog row.
func NewMalformedCatalogRowError(row int, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedCatalogRow,
		Message:   "Catalog row skipped",
		Details:   fmt.Sprintf("row: %d, reason: %s", row, reason),
		Retryable: false,
		Metadata:  map[string]interface{}{"row": row},
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogLoadFailedError reports that a catalog source could not be read.
func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   fmt.Sprintf("Catalog source '%s' could not be loaded", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSessionStoreFailedError wraps a session backend failure.
func NewSessionStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCacheBackendFailedError wraps a response cache backend failure.
func NewCacheBackendFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheBackendFailed,
		Message:   "Response cache operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidRequestError rejects a malformed inbound request.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogLoadFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeCacheBackendFailed,
		ErrCodeExternalServiceError:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError extracts a StandardError from err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first StandardError in err's chain, or
// INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeMissingSignal || code == ErrCodeNoLocalMatch:
		return "CONVERSATION"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "CACHE"):
		return "STATE"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "AUTHENTICATION"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
