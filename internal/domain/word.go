package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Word-specific validation errors
var (
	// ErrWordLemmaEmpty is returned when a word has no lemma.
	ErrWordLemmaEmpty = errors.New("word lemma cannot be empty")

	// ErrWordMeaningEmpty is returned when a word has no meaning.
	ErrWordMeaningEmpty = errors.New("word meaning cannot be empty")

	// ErrWordWordbookIDEmpty is returned when a word is not attached to a wordbook.
	ErrWordWordbookIDEmpty = errors.New("word wordbook ID cannot be empty")
)

// Word is a single vocabulary entry inside a wordbook. Lexical metadata
// (part of speech, gender, pronunciation, lesson, CEFR level) is optional
// and comes from the import source.
type Word struct {
	ID         int64     `json:"id"`
	WordbookID int64     `json:"wordbook_id"`
	Lemma      string    `json:"lemma"`
	Pos        string    `json:"pos,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	IPA        string    `json:"ipa,omitempty"`
	Meaning    string    `json:"meaning"`
	Lesson     string    `json:"lesson,omitempty"`
	CEFR       string    `json:"cefr,omitempty"`
	Tags       string    `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewWord creates a word attached to the given wordbook.
// The ID is assigned by the store on insert.
func NewWord(wordbookID int64, lemma, meaning string) (*Word, error) {
	now := time.Now().UTC()
	w := &Word{
		WordbookID: wordbookID,
		Lemma:      strings.TrimSpace(lemma),
		Meaning:    strings.TrimSpace(meaning),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}

// Validate checks if the Word has valid data.
func (w *Word) Validate() error {
	if w.WordbookID == 0 {
		return ErrWordWordbookIDEmpty
	}
	if strings.TrimSpace(w.Lemma) == "" {
		return ErrWordLemmaEmpty
	}
	if strings.TrimSpace(w.Meaning) == "" {
		return ErrWordMeaningEmpty
	}
	return nil
}

// NormalizeGender reduces a free-form gender marker to a single lower-case
// rune ("m", "f"), matching what import sources are allowed to carry.
func NormalizeGender(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	r := []rune(raw)[0]
	return string(unicode.ToLower(r))
}
