package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrNotConfigured is returned when no language-model API key is
	// configured; callers surface this as "feature unavailable".
	ErrNotConfigured = errors.New("example generation is not configured")

	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate examples")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
