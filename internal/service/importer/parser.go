package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parsing errors
var (
	// ErrUnsupportedFormat indicates a file extension outside csv/tsv/json.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoRows indicates a file with no data rows.
	ErrNoRows = errors.New("file contains no rows")

	// ErrMissingColumns indicates a file without the required lemma and
	// meaning columns.
	ErrMissingColumns = errors.New("file is missing required columns")
)

// Row is one parsed vocabulary entry. Lemma and Meaning are required;
// everything else is optional metadata.
type Row struct {
	Lemma   string `json:"lemma"`
	Meaning string `json:"meaning"`
	Pos     string `json:"pos"`
	Gender  string `json:"gender"`
	IPA     string `json:"ipa"`
	Lesson  string `json:"lesson"`
	CEFR    string `json:"cefr"`
	Tags    string `json:"tags"`
}

// placeholder values some spreadsheet exports emit for empty cells.
var placeholders = map[string]struct{}{
	"nan": {}, "null": {}, "none": {},
}

// cleanField trims a raw cell and drops spreadsheet placeholder values.
func cleanField(raw string) string {
	v := strings.TrimSpace(raw)
	if _, ok := placeholders[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}

// Parse reads vocabulary rows from r, picking the parser from the
// file extension. Tabular files need a header row naming at least the
// lemma and meaning columns; JSON files must hold an array of objects.
func Parse(filename string, r io.Reader) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseTabular(r, ',')
	case ".tsv":
		return parseTabular(r, '\t')
	case ".json":
		return parseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %s (expected .csv, .tsv, or .json)",
			ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func parseTabular(r io.Reader, comma rune) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	// Rows with trailing empty cells are common in exports.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrNoRows
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["lemma"]; !ok {
		return nil, fmt.Errorf("%w: lemma", ErrMissingColumns)
	}
	if _, ok := index["meaning"]; !ok {
		return nil, fmt.Errorf("%w: meaning", ErrMissingColumns)
	}

	cell := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return cleanField(record[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := Row{
			Lemma:   cell(record, "lemma"),
			Meaning: cell(record, "meaning"),
			Pos:     cell(record, "pos"),
			Gender:  cell(record, "gender"),
			IPA:     cell(record, "ipa"),
			Lesson:  cell(record, "lesson"),
			CEFR:    cell(record, "cefr"),
			Tags:    cell(record, "tags"),
		}
		// Skip rows that are entirely blank.
		if row.Lemma == "" && row.Meaning == "" {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	return rows, nil
}

func parseJSON(r io.Reader) ([]Row, error) {
	var raw []Row
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoRows
	}

	rows := make([]Row, 0, len(raw))
	for _, row := range raw {
		row.Lemma = cleanField(row.Lemma)
		row.Meaning = cleanField(row.Meaning)
		row.Pos = cleanField(row.Pos)
		row.Gender = cleanField(row.Gender)
		row.IPA = cleanField(row.IPA)
		row.Lesson = cleanField(row.Lesson)
		row.CEFR = cleanField(row.CEFR)
		row.Tags = cleanField(row.Tags)
		if row.Lemma == "" && row.Meaning == "" {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	return rows, nil
}
