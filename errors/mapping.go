package errors

import (
	"fmt"
	"net"
	"strings"
)

// NewLarkError creates an error from a non-zero code in a Feishu API
// response body. The vendor returns HTTP 200 with a JSON envelope; the
// numeric code is the authoritative failure signal.
func NewLarkError(apiCode int, msg string) *Error {
	var code ErrorCode
	var category ErrorCategory

	switch apiCode {
	case 99991661, 99991663, 99991668:
		// tenant access token missing or invalid
		code = CodeInvalidCredentials
		category = CategoryAuth
	case 99991664, 99991677:
		code = CodeTokenExpired
		category = CategoryAuth
	case 230020, 230021:
		code = CodeRateLimited
		category = CategoryRateLimit
	default:
		code = CodeAPIError
		category = CategoryPlatform
	}

	e := Newf(code, category, "feishu api error: %s", msg)
	e.APICode = apiCode
	return e
}

// MapHTTPError maps non-200 HTTP status codes to an Error
func MapHTTPError(statusCode int, body string) *Error {
	var code ErrorCode
	var category ErrorCategory
	var message string

	switch {
	case statusCode == 401:
		code = CodeUnauthorized
		category = CategoryAuth
		message = "authentication required"
	case statusCode == 403:
		code = CodeForbidden
		category = CategoryAuth
		message = "access forbidden"
	case statusCode == 404:
		code = CodeNotFound
		category = CategoryNetwork
		message = "resource not found"
	case statusCode == 429:
		code = CodeRateLimited
		category = CategoryRateLimit
		message = "rate limit exceeded"
	case statusCode >= 400 && statusCode < 500:
		code = CodeInvalidConfig
		category = CategoryValidation
		message = fmt.Sprintf("client error: %d", statusCode)
	case statusCode >= 500:
		code = CodeServerError
		category = CategoryNetwork
		message = fmt.Sprintf("server error: %d", statusCode)
	default:
		code = CodeNetworkError
		category = CategoryNetwork
		message = fmt.Sprintf("http error: %d", statusCode)
	}

	if body != "" && len(body) < 200 {
		message += fmt.Sprintf(" - %s", strings.TrimSpace(body))
	}

	return New(code, category, message)
}

// MapNetworkError maps transport-level errors to an Error. The underlying
// error is preserved unchanged as the cause.
func MapNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return Wrap(CodeTimeout, CategoryNetwork, "request timeout", err)
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "context deadline exceeded"):
		return Wrap(CodeTimeout, CategoryNetwork, "request timeout", err)
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "connection reset"):
		return Wrap(CodeNetworkError, CategoryNetwork, "connection failed", err)
	default:
		return Wrap(CodeNetworkError, CategoryNetwork, "network error", err)
	}
}
