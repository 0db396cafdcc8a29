package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lgrenier/vocable-api/internal/api/shared"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/redact"
	"github.com/lgrenier/vocable-api/internal/store"
)

// SettingsHandler handles application settings HTTP requests.
type SettingsHandler struct {
	settings store.SettingStore
	logger   *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings store.SettingStore, log *slog.Logger) *SettingsHandler {
	if settings == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("settings cannot be nil for SettingsHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SettingsHandler")
	}

	return &SettingsHandler{
		settings: settings,
		logger:   log.With(slog.String("component", "settings_handler")),
	}
}

// Get handles GET /settings requests.
// Returns the defaults when nothing has been stored yet.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setting, err := h.settings.Get(r.Context(), domain.SettingKeyApp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithJSON(w, r, http.StatusOK, domain.DefaultAppSettings())
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var app domain.AppSettings
	if err := json.Unmarshal(setting.Value, &app); err != nil {
		// A corrupt blob should not brick the client.
		log.Error("stored settings are unreadable, serving defaults",
			slog.String("error", redact.Error(err)))
		shared.RespondWithJSON(w, r, http.StatusOK, domain.DefaultAppSettings())
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, app)
}

// UpdateSettingsRequest is the request body for replacing the settings.
type UpdateSettingsRequest struct {
	DailyLimit     int  `json:"daily_limit"      validate:"required,min=1,max=500"`
	NewCardLimit   int  `json:"new_card_limit"   validate:"min=0,max=100"`
	IncludeRolling bool `json:"include_rolling"`
	AutoAdjustNew  bool `json:"auto_adjust_new"`
	ShowIPA        bool `json:"show_ipa"`
	AudioEnabled   bool `json:"audio_enabled"`
}

// Update handles PUT /settings requests.
// The document is replaced wholesale, not merged.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UpdateSettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	app := domain.AppSettings{
		DailyLimit:     req.DailyLimit,
		NewCardLimit:   req.NewCardLimit,
		IncludeRolling: req.IncludeRolling,
		AutoAdjustNew:  req.AutoAdjustNew,
		ShowIPA:        req.ShowIPA,
		AudioEnabled:   req.AudioEnabled,
	}

	value, err := json.Marshal(app)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to store settings", err)
		return
	}

	setting := &domain.Setting{
		Key:       domain.SettingKeyApp,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.settings.Put(r.Context(), setting); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("settings updated",
		slog.Int("daily_limit", app.DailyLimit),
		slog.Int("new_card_limit", app.NewCardLimit))
	shared.RespondWithJSON(w, r, http.StatusOK, app)
}
