package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "basic error",
			err: &Error{
				Code:     CodeInvalidConfig,
				Category: CategoryConfig,
				Message:  "invalid configuration",
			},
			expected: "[CONFIG:INVALID_CONFIG] invalid configuration",
		},
		{
			name: "error with vendor code",
			err: &Error{
				Code:     CodeAPIError,
				Category: CategoryPlatform,
				Message:  "feishu api error: bad receive_id",
				APICode:  230002,
			},
			expected: "[PLATFORM:API_ERROR] feishu api error: bad receive_id (api code: 230002)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := NewLarkError(99991663, "tenant access token invalid")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected %v to match ErrInvalidCredentials", err)
	}
	if errors.Is(err, ErrInvalidEvent) {
		t.Errorf("did not expect %v to match ErrInvalidEvent", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := MapNetworkError(cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause to survive errors.Is")
	}
	if err.Code != CodeNetworkError {
		t.Errorf("Code = %v, want %v", err.Code, CodeNetworkError)
	}
}

func TestNewLarkError(t *testing.T) {
	tests := []struct {
		name     string
		apiCode  int
		wantCode ErrorCode
	}{
		{"invalid token", 99991663, CodeInvalidCredentials},
		{"expired token", 99991664, CodeTokenExpired},
		{"rate limited", 230020, CodeRateLimited},
		{"unknown code", 42, CodeAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLarkError(tt.apiCode, "msg")
			if err.Code != tt.wantCode {
				t.Errorf("NewLarkError(%d).Code = %v, want %v", tt.apiCode, err.Code, tt.wantCode)
			}
			if err.APICode != tt.apiCode {
				t.Errorf("APICode = %d, want %d", err.APICode, tt.apiCode)
			}
		})
	}
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status   int
		wantCode ErrorCode
	}{
		{401, CodeUnauthorized},
		{403, CodeForbidden},
		{404, CodeNotFound},
		{429, CodeRateLimited},
		{400, CodeInvalidConfig},
		{500, CodeServerError},
		{502, CodeServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := MapHTTPError(tt.status, "")
			if err.Code != tt.wantCode {
				t.Errorf("MapHTTPError(%d).Code = %v, want %v", tt.status, err.Code, tt.wantCode)
			}
		})
	}
}

func TestError_HTTPStatusCode(t *testing.T) {
	if got := ErrInvalidEvent.HTTPStatusCode(); got != http.StatusBadRequest {
		t.Errorf("ErrInvalidEvent.HTTPStatusCode() = %d, want %d", got, http.StatusBadRequest)
	}
	if got := ErrTokenExpired.HTTPStatusCode(); got != http.StatusUnauthorized {
		t.Errorf("ErrTokenExpired.HTTPStatusCode() = %d, want %d", got, http.StatusUnauthorized)
	}
}

func TestError_IsRetryable(t *testing.T) {
	if !ErrTimeout.IsRetryable() {
		t.Error("timeout should be retryable")
	}
	if ErrInvalidEvent.IsRetryable() {
		t.Error("invalid event should not be retryable")
	}
}

func TestIsInvalidEvent(t *testing.T) {
	if !IsInvalidEvent(ErrInvalidEvent) {
		t.Error("IsInvalidEvent should report true for ErrInvalidEvent")
	}
	if IsInvalidEvent(errors.New("plain")) {
		t.Error("IsInvalidEvent should report false for plain errors")
	}
}
