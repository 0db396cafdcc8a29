package domain

import (
	"errors"
	"time"
)

// Example validation errors
var (
	// ErrExampleCardIDEmpty is returned when an example is not attached to a card.
	ErrExampleCardIDEmpty = errors.New("example card ID cannot be empty")

	// ErrExampleTextEmpty is returned when an example has no sentence text.
	ErrExampleTextEmpty = errors.New("example text cannot be empty")
)

// Example is a usage sentence attached to a card, with its translation.
// Source records where the sentence came from ("gemini", "manual", import file name).
type Example struct {
	ID          int64     `json:"id"`
	CardID      int64     `json:"card_id"`
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	Source      string    `json:"source,omitempty"`
	CEFR        string    `json:"cefr,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewExample creates an example sentence for the given card.
func NewExample(cardID int64, text, translation, source string) (*Example, error) {
	ex := &Example{
		CardID:      cardID,
		Text:        text,
		Translation: translation,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}

	if err := ex.Validate(); err != nil {
		return nil, err
	}

	return ex, nil
}

// Validate checks if the Example has valid data.
func (e *Example) Validate() error {
	if e.CardID == 0 {
		return ErrExampleCardIDEmpty
	}
	if e.Text == "" {
		return ErrExampleTextEmpty
	}
	return nil
}
