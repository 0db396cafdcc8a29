package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lgrenier/vocable-api/internal/generation"
	"github.com/lgrenier/vocable-api/internal/service/importer"
	"github.com/lgrenier/vocable-api/internal/service/scheduler"
	"github.com/lgrenier/vocable-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based
// on the error type, so handlers never leak internal error details to
// clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, scheduler.ErrCardNotFound),
		errors.Is(err, scheduler.ErrStateNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrNoActiveWordbook),
		errors.Is(err, importer.ErrNoActiveWordbook),
		errors.Is(err, scheduler.ErrInvalidGrade),
		errors.Is(err, scheduler.ErrInvalidLimit),
		errors.Is(err, importer.ErrMissingColumns),
		errors.Is(err, importer.ErrNoRows):
		return http.StatusBadRequest

	// Unsupported upload formats
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	// Example generation
	case errors.Is(err, generation.ErrNotConfigured):
		return http.StatusNotImplemented

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for
// the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Not found errors
	case errors.Is(err, store.ErrWordbookNotFound):
		return "Wordbook not found"

	case errors.Is(err, store.ErrWordNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, scheduler.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrSRSStateNotFound),
		errors.Is(err, scheduler.ErrStateNotFound):
		return "Card scheduling state not found"

	case errors.Is(err, store.ErrImportNotFound):
		return "Import not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Conflict errors
	case errors.Is(err, store.ErrWordbookNameExists):
		return "A wordbook with this name already exists"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	// Bad request errors
	case errors.Is(err, store.ErrNoActiveWordbook),
		errors.Is(err, importer.ErrNoActiveWordbook):
		return "No active wordbook"

	case errors.Is(err, scheduler.ErrInvalidGrade):
		return "Grade must be between 0 and 3"

	case errors.Is(err, scheduler.ErrInvalidLimit):
		return "Invalid queue limit"

	case errors.Is(err, importer.ErrMissingColumns):
		return "File must contain lemma and meaning columns"

	case errors.Is(err, importer.ErrNoRows):
		return "File contains no rows"

	case errors.Is(err, importer.ErrUnsupportedFormat):
		return "Unsupported file format, use CSV, TSV or JSON"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Example generation
	case errors.Is(err, generation.ErrNotConfigured):
		return "Example generation is not configured"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Example generation was blocked by content filters"

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Example generation failed"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError rewrites validator error messages into a
// user-friendly form without struct internals.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format:
		// "Key: 'QueueRequest.Limit' Error:Field validation for 'Limit' failed on the 'max' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly messages.
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
