package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrSessionNotFound,
			expected: "No photo stored for this timestamp",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	if got := ErrStyleNotFound.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("detector timeout")
	newErr := ErrModelFailure.WithError(underlying)

	if newErr.Code != ErrModelFailure.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrModelFailure.Code)
	}

	if newErr.StatusCode != ErrModelFailure.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrModelFailure.StatusCode)
	}

	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}

	if ErrModelFailure.Err != nil {
		t.Errorf("WithError must not mutate the predefined error")
	}
}

func TestAppError_WithMessage(t *testing.T) {
	err := ErrMissingHeader.WithMessage("Photo-Timestamp header is required")

	if err.Message != "Photo-Timestamp header is required" {
		t.Errorf("Message = %v", err.Message)
	}
	if err.Code != ErrMissingHeader.Code || err.StatusCode != 400 {
		t.Errorf("code/status changed: %v %v", err.Code, err.StatusCode)
	}
	if ErrMissingHeader.Message == err.Message {
		t.Errorf("WithMessage must not mutate the predefined error")
	}
}

func TestErrorsAs(t *testing.T) {
	err := ErrSessionNotFound.WithError(errors.New("token 123"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Errorf("errors.As should match AppError")
	}

	if appErr.Code != "SESSION_NOT_FOUND" {
		t.Errorf("Code = %v, want SESSION_NOT_FOUND", appErr.Code)
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err        *AppError
		code       string
		statusCode int
	}{
		{ErrInternal, "INTERNAL_ERROR", 500},
		{ErrUnauthorized, "UNAUTHORIZED", 401},
		{ErrMissingOperation, "MISSING_OPERATION", 400},
		{ErrUnknownOperation, "UNKNOWN_OPERATION", 400},
		{ErrMissingHeader, "MISSING_HEADER", 400},
		{ErrMissingBody, "MISSING_BODY", 400},
		{ErrInvalidImage, "INVALID_IMAGE", 400},
		{ErrSessionNotFound, "SESSION_NOT_FOUND", 404},
		{ErrStyleNotFound, "STYLE_NOT_FOUND", 404},
		{ErrDegenerateGeometry, "DEGENERATE_GEOMETRY", 500},
		{ErrEmptyCategory, "EMPTY_CATEGORY", 500},
		{ErrModelFailure, "MODEL_FAILURE", 500},
		{ErrRateLimitExceeded, "RATE_LIMIT_EXCEEDED", 429},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %v, want %v", tt.err.StatusCode, tt.statusCode)
			}
		})
	}
}
