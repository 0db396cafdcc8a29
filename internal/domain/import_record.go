package domain

import (
	"time"
)

// ImportStatus tracks the lifecycle of a word-list import.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportRecord tracks a single file import into a wordbook: how many rows
// the file held and how many succeeded or failed. Message carries the first
// few row-level errors for display.
type ImportRecord struct {
	ID         int64        `json:"id"`
	WordbookID int64        `json:"wordbook_id"`
	Filename   string       `json:"filename"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Status     ImportStatus `json:"status"`
	Total      int          `json:"total"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Message    string       `json:"message,omitempty"`
}

// NewImportRecord creates a pending import record for the given file.
func NewImportRecord(wordbookID int64, filename string) *ImportRecord {
	return &ImportRecord{
		WordbookID: wordbookID,
		Filename:   filename,
		StartedAt:  time.Now().UTC(),
		Status:     ImportStatusPending,
	}
}
