package domain

import (
	"errors"
	"strings"
	"time"
)

// TagLeech marks a card whose lapse count crossed the leech threshold.
// It is the only tag the scheduler itself reads or writes.
const TagLeech = "leech"

// Card-specific validation errors
var (
	// ErrCardWordIDEmpty is returned when a card is not attached to a word.
	ErrCardWordIDEmpty = errors.New("card word ID cannot be empty")

	// ErrCardTemplateEmpty is returned when a card has no template.
	ErrCardTemplateEmpty = errors.New("card template cannot be empty")
)

// Card is a learnable unit derived from a word. Each card owns exactly one
// SRSState, created together with the card, and accumulates Review events.
// Tags is a comma-separated label set.
type Card struct {
	ID        int64     `json:"id"`
	WordID    int64     `json:"word_id"`
	Template  string    `json:"template"`
	Hint      string    `json:"hint,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCard creates a card for the given word using the basic template.
// The ID is assigned by the store on insert.
func NewCard(wordID int64, tags string) (*Card, error) {
	card := &Card{
		WordID:    wordID,
		Template:  "basic",
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.WordID == 0 {
		return ErrCardWordIDEmpty
	}
	if c.Template == "" {
		return ErrCardTemplateEmpty
	}
	return nil
}

// TagList splits the comma-separated tag set, dropping empty entries.
func (c *Card) TagList() []string {
	if c.Tags == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(c.Tags, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasTag reports whether the tag set contains the given label.
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a label to the tag set if it is not already present.
// Returns true if the set changed.
func (c *Card) AddTag(tag string) bool {
	if c.HasTag(tag) {
		return false
	}
	tags := append(c.TagList(), tag)
	c.Tags = strings.Join(tags, ",")
	return true
}
