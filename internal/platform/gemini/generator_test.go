package gemini

import (
	"log/slog"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/generation"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	prompt, err := template.New("examples").Parse(promptTemplate)
	require.NoError(t, err)
	return &Generator{
		model:  "gemini-2.0-flash",
		prompt: prompt,
		logger: slog.Default(),
	}
}

func TestBuildPrompt(t *testing.T) {
	g := testGenerator(t)

	word := &domain.Word{
		Lemma:   "chien",
		Meaning: "dog",
		Pos:     "noun",
		CEFR:    "A1",
	}

	prompt, err := g.buildPrompt(word, "fr", 3)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"chien"`)
	assert.Contains(t, prompt, "(noun)")
	assert.Contains(t, prompt, "meaning: dog")
	assert.Contains(t, prompt, "French")
	assert.Contains(t, prompt, "CEFR level A1")
	assert.Contains(t, prompt, "3 short example sentences")
}

func TestBuildPromptOmitsOptionalFields(t *testing.T) {
	g := testGenerator(t)

	word := &domain.Word{
		Lemma:   "courir",
		Meaning: "to run",
	}

	prompt, err := g.buildPrompt(word, "fr", 2)
	require.NoError(t, err)

	assert.NotContains(t, prompt, "()")
	assert.NotContains(t, prompt, "CEFR level ,")
}

func TestParseExamples(t *testing.T) {
	raw := `[
		{"text": "Le chien dort.", "translation": "The dog is sleeping.", "cefr": "A1"},
		{"text": "Mon chien aime courir.", "translation": "My dog likes to run.", "cefr": "A2"}
	]`

	examples, err := parseExamples(42, raw)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	assert.Equal(t, int64(42), examples[0].CardID)
	assert.Equal(t, "Le chien dort.", examples[0].Text)
	assert.Equal(t, "The dog is sleeping.", examples[0].Translation)
	assert.Equal(t, "gemini", examples[0].Source)
	assert.Equal(t, "A1", examples[0].CEFR)
	assert.Equal(t, "A2", examples[1].CEFR)
}

func TestParseExamplesStripsCodeFence(t *testing.T) {
	raw := "```json\n[{\"text\": \"Le chat mange.\", \"translation\": \"The cat eats.\", \"cefr\": \"A1\"}]\n```"

	examples, err := parseExamples(7, raw)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "Le chat mange.", examples[0].Text)
}

func TestParseExamplesSkipsBlankEntries(t *testing.T) {
	raw := `[
		{"text": "", "translation": "empty", "cefr": ""},
		{"text": "Bonjour.", "translation": "Hello.", "cefr": "A1"}
	]`

	examples, err := parseExamples(1, raw)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "Bonjour.", examples[0].Text)
}

func TestParseExamplesInvalidJSON(t *testing.T) {
	_, err := parseExamples(1, "here are some sentences: le chien dort")
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestParseExamplesAllBlank(t *testing.T) {
	_, err := parseExamples(1, `[{"text": "", "translation": "", "cefr": ""}]`)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "French", languageName("fr"))
	assert.Equal(t, "German", languageName("de"))
	assert.Equal(t, "tlh", languageName("tlh"))
}
