package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lgrenier/vocable-api/internal/generation"
	"github.com/lgrenier/vocable-api/internal/service/importer"
	"github.com/lgrenier/vocable-api/internal/service/scheduler"
	"github.com/lgrenier/vocable-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"wordbook not found", store.ErrWordbookNotFound, http.StatusNotFound},
		{"card not found via scheduler", scheduler.ErrCardNotFound, http.StatusNotFound},
		{"state not found", scheduler.ErrStateNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", store.ErrWordNotFound), http.StatusNotFound},
		{"duplicate name", store.ErrWordbookNameExists, http.StatusConflict},
		{"invalid grade", scheduler.ErrInvalidGrade, http.StatusBadRequest},
		{"invalid limit", scheduler.ErrInvalidLimit, http.StatusBadRequest},
		{"no active wordbook", store.ErrNoActiveWordbook, http.StatusBadRequest},
		{"importer no active wordbook", importer.ErrNoActiveWordbook, http.StatusBadRequest},
		{"missing columns", importer.ErrMissingColumns, http.StatusBadRequest},
		{"unsupported format", importer.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"generation not configured", generation.ErrNotConfigured, http.StatusNotImplemented},
		{"generation blocked", generation.ErrContentBlocked, http.StatusUnprocessableEntity},
		{"generation failed", generation.ErrGenerationFailed, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Wordbook not found", GetSafeErrorMessage(store.ErrWordbookNotFound))
	assert.Equal(t, "Card not found", GetSafeErrorMessage(scheduler.ErrCardNotFound))
	assert.Equal(t, "Grade must be between 0 and 3", GetSafeErrorMessage(scheduler.ErrInvalidGrade))
	assert.Equal(t, "A wordbook with this name already exists",
		GetSafeErrorMessage(store.ErrWordbookNameExists))
	assert.Equal(t, "Example generation is not configured",
		GetSafeErrorMessage(generation.ErrNotConfigured))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("boom")))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestGetSafeErrorMessageNeverLeaksWrappedDetail(t *testing.T) {
	err := fmt.Errorf("query failed on host db.internal:5432: %w", store.ErrWordNotFound)
	msg := GetSafeErrorMessage(err)

	assert.Equal(t, "Word not found", msg)
	assert.NotContains(t, msg, "db.internal")
}

func TestSanitizeValidationError(t *testing.T) {
	err := errors.New(
		"Key: 'ReviewRequest.Grade' Error:Field validation for 'Grade' failed on the 'required' tag",
	)
	assert.Equal(t, "Invalid Grade: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
