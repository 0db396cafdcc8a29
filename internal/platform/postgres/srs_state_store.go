package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// SRSStateStore implements the store.SRSStateStore interface using a
// PostgreSQL database as the storage backend.
type SRSStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSRSStateStore creates a new PostgreSQL implementation of the
// SRSStateStore interface. If logger is nil, a default logger will be
// used.
func NewSRSStateStore(db store.DBTX, log *slog.Logger) *SRSStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SRSStateStore{
		db:     db,
		logger: log.With(slog.String("component", "srs_state_store")),
	}
}

// Ensure SRSStateStore implements store.SRSStateStore interface
var _ store.SRSStateStore = (*SRSStateStore)(nil)

const srsStateColumns = `card_id, due, interval, ease, reps, lapses, algorithm, last_reviewed, created_at, updated_at`

func scanSRSState(row interface{ Scan(...any) error }) (*domain.SRSState, error) {
	var st domain.SRSState
	err := row.Scan(
		&st.CardID,
		&st.Due,
		&st.Interval,
		&st.Ease,
		&st.Reps,
		&st.Lapses,
		&st.Algorithm,
		&st.LastReviewed,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Create implements store.SRSStateStore.Create.
func (s *SRSStateStore) Create(ctx context.Context, state *domain.SRSState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("srs state validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return err
	}

	query := `
		INSERT INTO srs_state (card_id, due, interval, ease, reps, lapses, algorithm, last_reviewed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.CardID,
		state.Due,
		state.Interval,
		state.Ease,
		state.Reps,
		state.Lapses,
		state.Algorithm,
		state.LastReviewed,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create srs state",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return MapError(err)
	}

	return nil
}

// Get implements store.SRSStateStore.Get.
func (s *SRSStateStore) Get(ctx context.Context, cardID int64) (*domain.SRSState, error) {
	return s.get(ctx, cardID, false)
}

// GetForUpdate implements store.SRSStateStore.GetForUpdate. It only
// makes sense inside a transaction; the row lock is released on
// commit or rollback.
func (s *SRSStateStore) GetForUpdate(ctx context.Context, cardID int64) (*domain.SRSState, error) {
	return s.get(ctx, cardID, true)
}

func (s *SRSStateStore) get(ctx context.Context, cardID int64, forUpdate bool) (*domain.SRSState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + srsStateColumns + ` FROM srs_state WHERE card_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	st, err := scanSRSState(s.db.QueryRowContext(ctx, query, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("srs state not found", slog.Int64("card_id", cardID))
			return nil, store.ErrSRSStateNotFound
		}
		log.Error("failed to get srs state",
			slog.String("error", err.Error()),
			slog.Int64("card_id", cardID))
		return nil, MapError(err)
	}

	return st, nil
}

// Update implements store.SRSStateStore.Update.
func (s *SRSStateStore) Update(ctx context.Context, state *domain.SRSState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("srs state validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return err
	}

	query := `
		UPDATE srs_state
		SET due = $1, interval = $2, ease = $3, reps = $4, lapses = $5,
		    algorithm = $6, last_reviewed = $7, updated_at = $8
		WHERE card_id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.Due,
		state.Interval,
		state.Ease,
		state.Reps,
		state.Lapses,
		state.Algorithm,
		state.LastReviewed,
		state.UpdatedAt,
		state.CardID,
	)
	if err != nil {
		log.Error("failed to update srs state",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrSRSStateNotFound)
}

// WithTx implements store.SRSStateStore.WithTx.
func (s *SRSStateStore) WithTx(tx *sql.Tx) store.SRSStateStore {
	return &SRSStateStore{
		db:     tx,
		logger: s.logger,
	}
}
