// Package errors provides the standardized error types used across the SDK.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Configuration errors
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	CodeMissingConfig ErrorCode = "MISSING_CONFIG"

	// Event errors
	CodeInvalidEvent ErrorCode = "INVALID_EVENT"

	// Message errors
	CodeEmptyMessage   ErrorCode = "EMPTY_MESSAGE"
	CodeInvalidMsgType ErrorCode = "INVALID_MSG_TYPE"
	CodeInvalidReceive ErrorCode = "INVALID_RECEIVE_ID"

	// Network and transport errors
	CodeNetworkError ErrorCode = "NETWORK_ERROR"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeServerError  ErrorCode = "SERVER_ERROR"

	// Authentication errors
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	// General errors
	CodeAPIError         ErrorCode = "API_ERROR"
	CodeSendingFailed    ErrorCode = "SENDING_FAILED"
	CodeProcessingFailed ErrorCode = "PROCESSING_FAILED"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "CONFIG"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryNetwork    ErrorCategory = "NETWORK"
	CategoryAuth       ErrorCategory = "AUTH"
	CategoryRateLimit  ErrorCategory = "RATE_LIMIT"
	CategoryPlatform   ErrorCategory = "PLATFORM"
	CategoryInternal   ErrorCategory = "INTERNAL"
)

// Error represents a standardized SDK error with category and code.
// APICode carries the vendor's numeric code when the error originates from
// a Feishu API response body.
type Error struct {
	Code     ErrorCode     `json:"code"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
	APICode  int           `json:"api_code,omitempty"`
	Cause    error         `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.APICode != 0 {
		return fmt.Sprintf("[%s:%s] %s (api code: %d)", e.Category, e.Code, e.Message, e.APICode)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code && e.Category == t.Category
	}
	return false
}

// IsRetryable returns true if the error indicates a retryable condition.
// The SDK itself never retries; callers may use this to decide.
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case CodeNetworkError, CodeTimeout, CodeRateLimited, CodeServerError:
		return true
	default:
		return false
	}
}

// HTTPStatusCode returns the HTTP status code a webhook host should answer
// with when surfacing this error to the vendor.
func (e *Error) HTTPStatusCode() int {
	switch e.Code {
	case CodeInvalidEvent, CodeInvalidConfig, CodeEmptyMessage, CodeInvalidMsgType, CodeInvalidReceive:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error
func New(code ErrorCode, category ErrorCategory, message string) *Error {
	return &Error{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, category ErrorCategory, format string, args ...interface{}) *Error {
	return New(code, category, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an Error
func Wrap(code ErrorCode, category ErrorCategory, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// Standard error definitions
var (
	ErrInvalidConfig      = New(CodeInvalidConfig, CategoryConfig, "invalid configuration")
	ErrMissingCredentials = New(CodeMissingConfig, CategoryConfig, "app id and app secret are required")
	ErrInvalidEvent       = New(CodeInvalidEvent, CategoryValidation, "request is not a callback event (schema 2.0)")
	ErrEmptyMessage       = New(CodeEmptyMessage, CategoryValidation, "message content cannot be empty")
	ErrNetworkError       = New(CodeNetworkError, CategoryNetwork, "network communication failed")
	ErrTimeout            = New(CodeTimeout, CategoryNetwork, "request timeout")
	ErrRateLimited        = New(CodeRateLimited, CategoryRateLimit, "rate limit exceeded")
	ErrInvalidCredentials = New(CodeInvalidCredentials, CategoryAuth, "invalid credentials")
	ErrTokenExpired       = New(CodeTokenExpired, CategoryAuth, "tenant access token expired")
	ErrSendingFailed      = New(CodeSendingFailed, CategoryPlatform, "message sending failed")
)

// IsInvalidEvent checks if the error is an invalid-event error
func IsInvalidEvent(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == CodeInvalidEvent
	}
	return false
}

// IsAuthError checks if the error is authentication-related
func IsAuthError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Category == CategoryAuth
	}
	return false
}

// IsNetworkError checks if the error is network-related
func IsNetworkError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Category == CategoryNetwork
	}
	return false
}
