package domain

import (
	"errors"
	"time"
)

// Wordbook-specific validation errors
var (
	// ErrWordbookNameEmpty is returned when a wordbook has no name.
	ErrWordbookNameEmpty = errors.New("wordbook name cannot be empty")

	// ErrWordbookNameTooLong is returned when a wordbook name exceeds the storage limit.
	ErrWordbookNameTooLong = errors.New("wordbook name cannot exceed 200 characters")

	// ErrWordbookLanguageInvalid is returned when the language code is malformed.
	ErrWordbookLanguageInvalid = errors.New("wordbook language must be a 2-10 character code")
)

// Wordbook is a named collection of words to study. At most one wordbook is
// active at a time; all study operations are scoped to the active wordbook.
type Wordbook struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language"`
	Author      string    `json:"author,omitempty"`
	Version     string    `json:"version,omitempty"`
	TotalWords  int       `json:"total_words"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewWordbook creates an inactive wordbook with the given name and language.
// The ID is assigned by the store on insert.
func NewWordbook(name, description, language string) (*Wordbook, error) {
	if language == "" {
		language = "fr"
	}

	now := time.Now().UTC()
	wb := &Wordbook{
		Name:        name,
		Description: description,
		Language:    language,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := wb.Validate(); err != nil {
		return nil, err
	}

	return wb, nil
}

// Validate checks if the Wordbook has valid data.
func (w *Wordbook) Validate() error {
	if w.Name == "" {
		return ErrWordbookNameEmpty
	}
	if len(w.Name) > 200 {
		return ErrWordbookNameTooLong
	}
	if len(w.Language) < 2 || len(w.Language) > 10 {
		return ErrWordbookLanguageInvalid
	}
	return nil
}
