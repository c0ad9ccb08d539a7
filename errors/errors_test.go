package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("model returned garbage")
	wrappedErr := Wrap(originalErr, GenerationErrorType, "generative backend request failed")

	assert.Equal(t, GenerationErrorType, wrappedErr.Type)
	assert.Equal(t, "generative backend request failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, http.StatusBadGateway, wrappedErr.HTTPStatus)
	assert.Equal(t, originalErr, wrappedErr.Raw)
	assert.True(t, errors.Is(wrappedErr, originalErr))

	assert.Nil(t, Wrap(nil, GenerationErrorType, "ignored"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Itinerary", 123)
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Itinerary not found", err.Message)
	assert.Equal(t, "ID: 123", err.Detail)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("invalid_filter", "unknown route filter: prettiest")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid_filter", err.Message)
	assert.Equal(t, "unknown route filter: prettiest", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestDestinationNotFound(t *testing.T) {
	err := DestinationNotFound("nonexistent plaza")
	assert.Equal(t, DestinationNotFoundError, err.Type)
	assert.Equal(t, "Destination could not be resolved", err.Message)
	assert.Equal(t, "Query: nonexistent plaza", err.Detail)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
}

func TestGenerationError(t *testing.T) {
	err := GenerationError("model output rejected", "empty route list")
	assert.Equal(t, GenerationErrorType, err.Type)
	assert.Equal(t, "model output rejected", err.Message)
	assert.Equal(t, "empty route list", err.Detail)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
}

func TestIsDestinationNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "destination not found",
			err:      DestinationNotFound("atlantis"),
			expected: true,
		},
		{
			name:     "other app error",
			err:      ValidationFailed("invalid_origin", "out of range"),
			expected: false,
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("dial tcp: connection refused"),
			expected: false,
		},
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDestinationNotFound(tt.err))
		})
	}
}

func TestIsGenerationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "generation error",
			err:      GenerationError("model output rejected", "not json"),
			expected: true,
		},
		{
			name:     "wrapped generation error",
			err:      Wrap(fmt.Errorf("timeout"), GenerationErrorType, "backend failed"),
			expected: true,
		},
		{
			name:     "destination not found",
			err:      DestinationNotFound("atlantis"),
			expected: false,
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("timeout"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsGenerationError(tt.err))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, New(ValidationError, "", "").GetHTTPStatus())
	assert.Equal(t, http.StatusNotFound, New(DestinationNotFoundError, "", "").GetHTTPStatus())
	assert.Equal(t, http.StatusBadGateway, New(GenerationErrorType, "", "").GetHTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, New(ServerError, "", "").GetHTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, (&AppError{Type: ErrorType("UNKNOWN")}).GetHTTPStatus())
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "with detail",
			err: &AppError{
				Type:    ValidationError,
				Message: "invalid input",
				Detail:  "field required",
			},
			expected: "VALIDATION_ERROR: invalid input (field required)",
		},
		{
			name: "without detail",
			err: &AppError{
				Type:    GenerationErrorType,
				Message: "model output rejected",
			},
			expected: "GENERATION_ERROR: model output rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
