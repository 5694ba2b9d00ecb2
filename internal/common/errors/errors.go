// internal/common/errors/errors.go

// Package errors provides standardized error handling for the alert engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidPhoneNumber       ErrorCode = "INVALID_PHONE_NUMBER"
	ErrCodeMessageTooLong           ErrorCode = "MESSAGE_TOO_LONG"
	ErrCodePermanentProviderFailure ErrorCode = "PERMANENT_PROVIDER_FAILURE"
	ErrCodeTransientProviderFailure ErrorCode = "TRANSIENT_PROVIDER_FAILURE"
	ErrCodeMaxRetryAttemptsExceeded ErrorCode = "MAX_RETRY_ATTEMPTS_EXCEEDED"
	ErrCodeScheduleQueryFailure     ErrorCode = "SCHEDULE_QUERY_FAILURE"

	ErrCodeTemplateNotFound      ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeStoreQueryFailed      ErrorCode = "STORE_QUERY_FAILED"
	ErrCodeProviderNotConfigured ErrorCode = "PROVIDER_NOT_CONFIGURED"
	ErrCodeConfigInvalid         ErrorCode = "CONFIG_INVALID"
)

// StandardError represents a structured engine error. Retryable marks
// transient conditions: the gateway keeps trying further providers and the
// retry queue re-enqueues; non-retryable errors are terminal for the message.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Error Constructors
// ==========================

// NewInvalidPhoneNumberError is fatal for the contact; no retry.
func NewInvalidPhoneNumberError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPhoneNumber,
		Message:   "Cannot normalize phone number to a dialable form",
		Details:   fmt.Sprintf("input: %q", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageTooLongError is fatal for the send; no provider is attempted.
func NewMessageTooLongError(length, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageTooLong,
		Message:   "Message body exceeds the configured maximum length",
		Details:   fmt.Sprintf("length: %d, max: %d", length, max),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPermanentProviderFailureError wraps a provider rejection that no other
// provider can fix (bad destination, carrier rejection).
func NewPermanentProviderFailureError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePermanentProviderFailure,
		Message:   "Provider rejected the message permanently",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransientProviderFailureError wraps a retryable provider failure
// (timeout, rate limit, 5xx).
func NewTransientProviderFailureError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransientProviderFailure,
		Message:   "Provider failed transiently",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMaxRetryAttemptsExceededError is terminal for the message.
func NewMaxRetryAttemptsExceededError(attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMaxRetryAttemptsExceeded,
		Message:   "max retry attempts exceeded",
		Details:   fmt.Sprintf("attempts: %d", attempts),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScheduleQueryFailureError isolates a data-query failure to one
// schedule's pass.
func NewScheduleQueryFailureError(scheduleID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScheduleQueryFailure,
		Message:   "Schedule pass aborted by a data-store query failure",
		Details:   fmt.Sprintf("scheduleId: %s, error: %s", scheduleID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template lookup error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreQueryFailedError creates a retryable record-store error.
func NewStoreQueryFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreQueryFailed,
		Message:   "Record store query failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderNotConfiguredError creates a non-retryable configuration error.
func NewProviderNotConfiguredError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderNotConfigured,
		Message:   "No provider with that name is configured",
		Details:   fmt.Sprintf("provider: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Engine configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Utility Functions
// ==========================

// IsTransient reports whether err is a retryable engine error. Unknown error
// types are treated as transient so infrastructure blips get retried rather
// than dropped.
func IsTransient(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return err != nil
}

// CodeOf extracts the engine error code, or empty for foreign errors.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}
