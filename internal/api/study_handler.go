package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lgrenier/vocable-api/internal/api/shared"
	"github.com/lgrenier/vocable-api/internal/config"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/redact"
	"github.com/lgrenier/vocable-api/internal/service/scheduler"
)

// StudyService is the scheduler surface the study handler depends on.
type StudyService interface {
	BuildQueue(ctx context.Context, wordbookID int64, opts scheduler.QueueOptions) (*scheduler.Queue, error)
	SubmitReview(ctx context.Context, cardID int64, grade domain.Grade, elapsedMs *int) (*scheduler.ReviewOutcome, error)
	StudyStatsFor(ctx context.Context, wordbookID int64, historyDays int) (*scheduler.StudyStats, error)
	Progress(ctx context.Context, wordbookID int64, days int) ([]scheduler.ProgressPoint, error)
	DueForecast(ctx context.Context, wordbookID int64, days int) ([]scheduler.ForecastPoint, error)
}

// StudyHandler handles study queue and review HTTP requests.
type StudyHandler struct {
	study    StudyService
	studyCfg config.StudyConfig
	logger   *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(study StudyService, studyCfg config.StudyConfig, log *slog.Logger) *StudyHandler {
	if study == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("study service cannot be nil for StudyHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		study:    study,
		studyCfg: studyCfg,
		logger:   log.With(slog.String("component", "study_handler")),
	}
}

// queueParams are the query parameters of a queue request. Missing
// parameters fall back to the configured study defaults.
type queueParams struct {
	WordbookID     int64 `validate:"min=0"`
	Limit          *int  `validate:"omitempty,min=1,max=100"`
	NewCardLimit   *int  `validate:"omitempty,min=0,max=50"`
	IncludeRolling *bool
	AutoAdjustNew  *bool
}

// BuildQueue handles GET /study/next requests.
// It assembles a ranked study session for the requested wordbook, or
// the active one when no wordbook is given. Session size and mix are
// tuned with the limit, new_limit, include_rolling and auto_adjust_new
// query parameters.
func (h *StudyHandler) BuildQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var (
		req queueParams
		ok  bool
	)
	if req.WordbookID, ok = queryInt64(w, r, "wordbook_id"); !ok {
		return
	}
	if req.Limit, ok = queryOptionalInt(w, r, "limit"); !ok {
		return
	}
	if req.NewCardLimit, ok = queryOptionalInt(w, r, "new_limit"); !ok {
		return
	}
	if req.IncludeRolling, ok = queryOptionalBool(w, r, "include_rolling"); !ok {
		return
	}
	if req.AutoAdjustNew, ok = queryOptionalBool(w, r, "auto_adjust_new"); !ok {
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	opts := scheduler.QueueOptions{
		Limit:          h.studyCfg.DailyLimit,
		NewCardLimit:   h.studyCfg.NewCardLimit,
		IncludeRolling: true,
		AutoAdjustNew:  true,
	}
	if req.Limit != nil {
		opts.Limit = *req.Limit
	}
	if req.NewCardLimit != nil {
		opts.NewCardLimit = *req.NewCardLimit
	}
	if req.IncludeRolling != nil {
		opts.IncludeRolling = *req.IncludeRolling
	}
	if req.AutoAdjustNew != nil {
		opts.AutoAdjustNew = *req.AutoAdjustNew
	}

	queue, err := h.study.BuildQueue(r.Context(), req.WordbookID, opts)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("study queue built",
		slog.Int64("wordbook_id", queue.WordbookID),
		slog.String("session_id", queue.SessionID.String()),
		slog.Int("cards", len(queue.Cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, queue)
}

// ReviewRequest is the request body for submitting a card review.
type ReviewRequest struct {
	CardID    int64 `json:"card_id"    validate:"required,min=1"`
	Grade     *int  `json:"grade"      validate:"required,min=0,max=3"`
	ElapsedMs *int  `json:"elapsed_ms" validate:"omitempty,min=0"`
}

// SubmitReview handles POST /review requests.
// It grades a card and returns the updated schedule.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.Int64("card_id", req.CardID))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	outcome, err := h.study.SubmitReview(r.Context(), req.CardID, domain.Grade(*req.Grade), req.ElapsedMs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review submitted",
		slog.Int64("card_id", outcome.CardID),
		slog.Int("grade", int(outcome.Grade)))
	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}

// Stats handles GET /study/stats requests.
func (h *StudyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	wordbookID, ok := queryInt64(w, r, "wordbook_id")
	if !ok {
		return
	}

	stats, err := h.study.StudyStatsFor(r.Context(), wordbookID, h.studyCfg.HistoryDays)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Progress handles GET /study/progress requests.
// It returns daily review counts for the trailing window.
func (h *StudyHandler) Progress(w http.ResponseWriter, r *http.Request) {
	wordbookID, ok := queryInt64(w, r, "wordbook_id")
	if !ok {
		return
	}
	days := queryIntDefault(r, "days", h.studyCfg.HistoryDays)

	points, err := h.study.Progress(r.Context(), wordbookID, days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, points)
}

// DueForecast handles GET /study/due-forecast requests.
// It returns per-day due counts for the coming days.
func (h *StudyHandler) DueForecast(w http.ResponseWriter, r *http.Request) {
	wordbookID, ok := queryInt64(w, r, "wordbook_id")
	if !ok {
		return
	}
	days := queryIntDefault(r, "days", h.studyCfg.ForecastDays)

	points, err := h.study.DueForecast(r.Context(), wordbookID, days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, points)
}

// queryInt64 parses an optional int64 query parameter, writing a 400
// response and returning ok=false when the value is malformed.
func queryInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// queryOptionalInt parses an optional int query parameter, writing a
// 400 response and returning ok=false when the value is malformed. A
// missing parameter yields a nil pointer.
func queryOptionalInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	return &v, true
}

// queryOptionalBool parses an optional boolean query parameter, writing
// a 400 response and returning ok=false when the value is malformed. A
// missing parameter yields a nil pointer.
func queryOptionalBool(w http.ResponseWriter, r *http.Request, name string) (*bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	return &v, true
}

// queryIntDefault parses an optional positive int query parameter,
// falling back to def when absent or malformed.
func queryIntDefault(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
