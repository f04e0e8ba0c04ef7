package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage returns a copy carrying a more specific message, e.g. the missing header name.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing authentication secret",
		StatusCode: 401,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	// Protocol errors
	ErrMissingOperation = &AppError{
		Code:       "MISSING_OPERATION",
		Message:    "Operation header is required",
		StatusCode: 400,
	}

	ErrUnknownOperation = &AppError{
		Code:       "UNKNOWN_OPERATION",
		Message:    "Operation is not recognized",
		StatusCode: 400,
	}

	ErrMissingHeader = &AppError{
		Code:       "MISSING_HEADER",
		Message:    "A required header is missing or malformed",
		StatusCode: 400,
	}

	ErrMissingBody = &AppError{
		Code:       "MISSING_BODY",
		Message:    "Request body must carry an image",
		StatusCode: 400,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 400,
	}

	// Precondition errors
	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "No photo stored for this timestamp",
		StatusCode: 404,
	}

	ErrStyleNotFound = &AppError{
		Code:       "STYLE_NOT_FOUND",
		Message:    "Style id is out of range",
		StatusCode: 404,
	}

	// Pipeline errors
	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "Landmark detector found no face",
		StatusCode: 500,
	}

	ErrDegenerateGeometry = &AppError{
		Code:       "DEGENERATE_GEOMETRY",
		Message:    "Face landmarks cannot be normalized",
		StatusCode: 500,
	}

	ErrEmptyCategory = &AppError{
		Code:       "EMPTY_CATEGORY",
		Message:    "Gallery has no paintings for the detected emotion",
		StatusCode: 500,
	}

	ErrModelFailure = &AppError{
		Code:       "MODEL_FAILURE",
		Message:    "Model collaborator failed",
		StatusCode: 500,
	}

	ErrGalleryUnavailable = &AppError{
		Code:       "GALLERY_UNAVAILABLE",
		Message:    "Gallery asset could not be read",
		StatusCode: 500,
	}
)
