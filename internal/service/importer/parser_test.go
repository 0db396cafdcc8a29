package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"lemma,pos,gender,ipa,meaning,lesson,cefr,tags",
		"bonjour,interj,,bɔ̃ʒuʁ,hello,L1,A1,greeting",
		"chat,noun,m,ʃa,cat,L1,A1,",
		"nan,noun,,,NaN,,,",
	}, "\n")

	rows, err := Parse("words.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "bonjour", rows[0].Lemma)
	assert.Equal(t, "hello", rows[0].Meaning)
	assert.Equal(t, "interj", rows[0].Pos)
	assert.Equal(t, "bɔ̃ʒuʁ", rows[0].IPA)
	assert.Equal(t, "greeting", rows[0].Tags)

	assert.Equal(t, "m", rows[1].Gender)

	// Placeholder cells are treated as empty.
	assert.Empty(t, rows[2].Lemma)
	assert.Empty(t, rows[2].Meaning)
	assert.Equal(t, "noun", rows[2].Pos)
}

func TestParseTSV(t *testing.T) {
	t.Parallel()

	input := "lemma\tmeaning\nmerci\tthank you\n"

	rows, err := Parse("words.tsv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "merci", rows[0].Lemma)
	assert.Equal(t, "thank you", rows[0].Meaning)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	input := `[
		{"lemma": "pain", "meaning": "bread", "pos": "noun", "gender": "Masculine"},
		{"lemma": "  eau ", "meaning": "water"},
		{"lemma": "", "meaning": ""}
	]`

	rows, err := Parse("words.json", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pain", rows[0].Lemma)
	assert.Equal(t, "Masculine", rows[0].Gender)
	assert.Equal(t, "eau", rows[1].Lemma)
}

func TestParseSkipsBlankCSVRows(t *testing.T) {
	t.Parallel()

	input := "lemma,meaning\nchien,dog\n,\n"

	rows, err := Parse("words.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Parse("words.xlsx", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing lemma column", func(t *testing.T) {
		_, err := Parse("words.csv", strings.NewReader("word,meaning\na,b\n"))
		assert.ErrorIs(t, err, ErrMissingColumns)
	})

	t.Run("missing meaning column", func(t *testing.T) {
		_, err := Parse("words.csv", strings.NewReader("lemma,translation\na,b\n"))
		assert.ErrorIs(t, err, ErrMissingColumns)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := Parse("words.csv", strings.NewReader("lemma,meaning\n"))
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("empty json array", func(t *testing.T) {
		_, err := Parse("words.json", strings.NewReader("[]"))
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("json object instead of array", func(t *testing.T) {
		_, err := Parse("words.json", strings.NewReader(`{"lemma": "a"}`))
		assert.Error(t, err)
	})
}
