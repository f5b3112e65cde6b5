package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrInvalidCategory     = errors.New("invalid service category")
	ErrAlreadyReviewed     = errors.New("engagement already reviewed")
	ErrNotEligible         = errors.New("engagement not eligible for review")
	ErrConflict            = errors.New("conflict")
	ErrInternal            = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// InvalidTransition creates a 409 error for an illegal status transition.
func InvalidTransition(current, requested string) *AppError {
	return &AppError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot transition from %q to %q", current, requested),
		Status:  http.StatusConflict,
		Err:     ErrInvalidTransition,
	}
}

// ProviderUnavailable creates a 422 error for a failed creation-time eligibility check.
func ProviderUnavailable(message string) *AppError {
	return &AppError{
		Code:    "PROVIDER_UNAVAILABLE",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrProviderUnavailable,
	}
}

// InvalidCategory creates a 400 error for a category outside the fixed set.
func InvalidCategory(category string) *AppError {
	return &AppError{
		Code:    "INVALID_CATEGORY",
		Message: fmt.Sprintf("unknown service category %q", category),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidCategory,
	}
}

// AlreadyReviewed creates a 409 error for a second review on the same engagement.
func AlreadyReviewed(engagementID string) *AppError {
	return &AppError{
		Code:    "ALREADY_REVIEWED",
		Message: fmt.Sprintf("engagement %s has already been reviewed", engagementID),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyReviewed,
	}
}

// NotEligible creates a 422 error for a review precondition failure.
func NotEligible(message string) *AppError {
	return &AppError{
		Code:    "NOT_ELIGIBLE",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrNotEligible,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrNotEligible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
