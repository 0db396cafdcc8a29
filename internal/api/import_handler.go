package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lgrenier/vocable-api/internal/api/shared"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/redact"
	"github.com/lgrenier/vocable-api/internal/store"
)

// Upload bounds.
const (
	maxUploadBytes     = 10 << 20 // 10 MiB
	defaultImportLimit = 20
)

// ImportService is the importer surface the import handler depends on.
type ImportService interface {
	Import(ctx context.Context, wordbookID int64, filename string, r io.Reader) (*domain.ImportRecord, error)
}

// ImportHandler handles vocabulary file upload HTTP requests.
type ImportHandler struct {
	importer ImportService
	imports  store.ImportStore
	logger   *slog.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importer ImportService, imports store.ImportStore, log *slog.Logger) *ImportHandler {
	if importer == nil || imports == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("importer and imports cannot be nil for ImportHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ImportHandler")
	}

	return &ImportHandler{
		importer: importer,
		imports:  imports,
		logger:   log.With(slog.String("component", "import_handler")),
	}
}

// Upload handles POST /imports/upload requests.
// It ingests a CSV, TSV or JSON vocabulary file from a multipart form
// field named "file" into the target wordbook (the active one when no
// wordbook_id form value is given).
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Warn("invalid multipart form", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid or oversized upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Form field file is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warn("failed to close upload", slog.String("error", redact.Error(err)))
		}
	}()

	var wordbookID int64
	if raw := r.FormValue("wordbook_id"); raw != "" {
		id, ok := formInt64(w, r, raw)
		if !ok {
			return
		}
		wordbookID = id
	}

	record, err := h.importer.Import(r.Context(), wordbookID, header.Filename, file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("import completed",
		slog.Int64("import_id", record.ID),
		slog.String("filename", record.Filename),
		slog.Int("succeeded", record.Succeeded),
		slog.Int("failed", record.Failed))
	shared.RespondWithJSON(w, r, http.StatusCreated, record)
}

// Get handles GET /imports/{id} requests.
func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	record, err := h.imports.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// List handles GET /imports requests.
func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	wordbookID, ok := queryInt64(w, r, "wordbook_id")
	if !ok {
		return
	}
	limit := queryIntDefault(r, "limit", defaultImportLimit)

	records, err := h.imports.List(r.Context(), wordbookID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

// formInt64 parses a positive int64 form value, writing a 400 response
// and returning ok=false when malformed.
func formInt64(w http.ResponseWriter, r *http.Request, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid wordbook_id")
		return 0, false
	}
	return id, true
}
