// Package importer ingests vocabulary files (CSV, TSV, JSON) into a
// wordbook. Each imported word gets a basic card and fresh scheduling
// state, so it enters the study pipeline immediately.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// maxErrorMessages caps how many per-row errors are kept on the import
// record.
const maxErrorMessages = 10

// ErrNoActiveWordbook indicates an import without a target wordbook.
var ErrNoActiveWordbook = errors.New("no active wordbook to import into")

// Service runs file imports.
type Service struct {
	tx        store.TxRunner
	wordbooks store.WordbookStore
	words     store.WordStore
	cards     store.CardStore
	states    store.SRSStateStore
	imports   store.ImportStore
	logger    *slog.Logger
}

// NewService creates an import service. If log is nil the default
// logger is used.
func NewService(
	tx store.TxRunner,
	wordbooks store.WordbookStore,
	words store.WordStore,
	cards store.CardStore,
	states store.SRSStateStore,
	imports store.ImportStore,
	log *slog.Logger,
) *Service {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if wordbooks == nil {
		panic("wordbooks cannot be nil")
	}
	if words == nil {
		panic("words cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if imports == nil {
		panic("imports cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		tx:        tx,
		wordbooks: wordbooks,
		words:     words,
		cards:     cards,
		states:    states,
		imports:   imports,
		logger:    log.With(slog.String("component", "importer")),
	}
}

// Import parses the file and loads its rows into the given wordbook,
// or the active wordbook when wordbookID is 0. It always returns an
// import record describing what happened; the error is non-nil only
// when nothing could be imported at all.
func (s *Service) Import(ctx context.Context, wordbookID int64, filename string, r io.Reader) (*domain.ImportRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record := domain.NewImportRecord(wordbookID, filename)
	if err := s.imports.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}

	wordbook, err := s.resolveWordbook(ctx, wordbookID)
	if err != nil {
		return s.fail(ctx, record, err)
	}
	record.WordbookID = wordbook.ID

	rows, err := Parse(filename, r)
	if err != nil {
		return s.fail(ctx, record, err)
	}

	record.Status = domain.ImportStatusProcessing
	record.Total = len(rows)
	if err := s.imports.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update import record: %w", err)
	}

	var errorMessages []string
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		words := s.words.WithTx(tx)
		cards := s.cards.WithTx(tx)
		states := s.states.WithTx(tx)
		wordbooks := s.wordbooks.WithTx(tx)

		// Dedupe within the batch as well as against the database.
		batch := make(map[string]struct{}, len(rows))

		for i, row := range rows {
			if err := s.importRow(ctx, wordbook.ID, row, batch, words, cards, states); err != nil {
				if errors.Is(err, errDuplicateRow) {
					continue
				}
				record.Failed++
				if len(errorMessages) < maxErrorMessages {
					errorMessages = append(errorMessages, fmt.Sprintf("row %d: %v", i+1, err))
				}
				continue
			}
			record.Succeeded++
		}

		total, err := words.CountByWordbook(ctx, wordbook.ID)
		if err != nil {
			return fmt.Errorf("failed to count words: %w", err)
		}
		wordbook.TotalWords = total
		if err := wordbooks.Update(ctx, wordbook); err != nil {
			return fmt.Errorf("failed to update wordbook: %w", err)
		}

		return nil
	})
	if err != nil {
		return s.fail(ctx, record, err)
	}

	now := time.Now().UTC()
	record.Status = domain.ImportStatusCompleted
	record.FinishedAt = &now
	record.Message = strings.Join(errorMessages, "; ")
	if err := s.imports.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to finalize import record: %w", err)
	}

	log.Info("import completed",
		slog.Int64("import_id", record.ID),
		slog.Int64("wordbook_id", wordbook.ID),
		slog.String("filename", filename),
		slog.Int("total", record.Total),
		slog.Int("succeeded", record.Succeeded),
		slog.Int("failed", record.Failed))

	return record, nil
}

// errDuplicateRow marks a row silently skipped because the word is
// already present.
var errDuplicateRow = errors.New("duplicate row")

func (s *Service) importRow(
	ctx context.Context,
	wordbookID int64,
	row Row,
	batch map[string]struct{},
	words store.WordStore,
	cards store.CardStore,
	states store.SRSStateStore,
) error {
	word, err := domain.NewWord(wordbookID, row.Lemma, row.Meaning)
	if err != nil {
		return err
	}
	word.Pos = row.Pos
	word.Gender = domain.NormalizeGender(row.Gender)
	word.IPA = row.IPA
	word.Lesson = row.Lesson
	word.CEFR = row.CEFR
	word.Tags = row.Tags

	key := word.Lemma + "\x00" + word.Meaning
	if _, dup := batch[key]; dup {
		return errDuplicateRow
	}
	batch[key] = struct{}{}

	exists, err := words.ExistsByLemmaMeaning(ctx, wordbookID, word.Lemma, word.Meaning)
	if err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	if exists {
		return errDuplicateRow
	}

	if err := words.Create(ctx, word); err != nil {
		return err
	}

	card, err := domain.NewCard(word.ID, row.Tags)
	if err != nil {
		return err
	}
	if err := cards.Create(ctx, card); err != nil {
		return err
	}

	// New cards are immediately studiable.
	state, err := domain.NewSRSState(card.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := states.Create(ctx, state); err != nil {
		return err
	}

	return nil
}

func (s *Service) resolveWordbook(ctx context.Context, wordbookID int64) (*domain.Wordbook, error) {
	if wordbookID == 0 {
		wordbook, err := s.wordbooks.GetActive(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNoActiveWordbook) {
				return nil, ErrNoActiveWordbook
			}
			return nil, fmt.Errorf("failed to resolve active wordbook: %w", err)
		}
		return wordbook, nil
	}

	wordbook, err := s.wordbooks.Get(ctx, wordbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wordbook: %w", err)
	}
	return wordbook, nil
}

// fail marks the record failed with the triggering error and returns
// both so callers can surface the record alongside the error.
func (s *Service) fail(ctx context.Context, record *domain.ImportRecord, cause error) (*domain.ImportRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	record.Status = domain.ImportStatusFailed
	record.FinishedAt = &now
	record.Message = cause.Error()
	if err := s.imports.Update(ctx, record); err != nil {
		log.Error("failed to mark import as failed",
			slog.String("error", err.Error()),
			slog.Int64("import_id", record.ID))
	}

	return record, cause
}
