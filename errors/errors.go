package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError          ErrorType = "VALIDATION_ERROR"
	NotFoundError            ErrorType = "NOT_FOUND"
	DestinationNotFoundError ErrorType = "DESTINATION_NOT_FOUND"
	GenerationErrorType      ErrorType = "GENERATION_ERROR"
	ServerError              ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying raw error for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status code associated with the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// DestinationNotFound is returned when free-text destination resolution fails.
// It is the only pipeline failure allowed to reach the caller (see the planner
// service); every other failure mode degrades to a poorer result set instead.
func DestinationNotFound(query string) *AppError {
	return &AppError{
		Type:       DestinationNotFoundError,
		Message:    "Destination could not be resolved",
		Detail:     fmt.Sprintf("Query: %s", query),
		HTTPStatus: http.StatusNotFound,
	}
}

// GenerationError is returned by the AI enhancer when the model output is
// empty, unparseable, or fails schema validation. Callers convert it into a
// fallback-catalog lookup rather than surfacing it.
func GenerationError(message string, detail string) *AppError {
	return &AppError{
		Type:       GenerationErrorType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadGateway,
	}
}

// IsGenerationError reports whether err is an AI generation failure.
func IsGenerationError(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == GenerationErrorType
}

// IsDestinationNotFound reports whether err is a destination resolution failure.
func IsDestinationNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == DestinationNotFoundError
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError, DestinationNotFoundError:
		return http.StatusNotFound
	case GenerationErrorType:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
