// Package generation defines the boundary between the application core
// and external language-model services used to produce example
// sentences for vocabulary cards.
package generation

import (
	"context"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// ExampleGenerator produces example sentences for a vocabulary word.
// Implementations call an external language model; the returned
// examples carry the given card id and are ready to persist.
type ExampleGenerator interface {
	// GenerateExamples creates up to count example sentences using the
	// word in context, with translations. The language is the
	// wordbook's language code.
	GenerateExamples(ctx context.Context, cardID int64, word *domain.Word, language string, count int) ([]*domain.Example, error)
}
