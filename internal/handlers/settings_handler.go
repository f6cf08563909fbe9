// internal/handlers/settings_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"flashcard_quiz/internal/middleware"
	"flashcard_quiz/internal/model"
	"flashcard_quiz/internal/service"
	"flashcard_quiz/internal/webutil"
)

type SettingsHandler struct {
	service service.LibraryService
	logger  *slog.Logger
}

func NewSettingsHandler(s service.LibraryService, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{service: s, logger: logger}
}

// GetSettings は現在のモードと選択中のコレクションを返す
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "GetSettings"))
	webutil.RespondWithJSON(w, http.StatusOK, h.settings(), logger)
}

// PutMode はレビューモードを変更して永続化する
func (h *SettingsHandler) PutMode(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "PutMode"))

	var req model.PutModeRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid mode request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	mode, err := model.ParseReviewMode(req.Mode)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.SetMode(r.Context(), mode); err != nil {
		logger.Error("Failed to set review mode", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Review mode changed", slog.String("mode", mode.String()))
	webutil.RespondWithJSON(w, http.StatusOK, h.settings(), logger)
}

// PutSelection は出題対象のコレクションを置き換える。空配列は全解除。
func (h *SettingsHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "PutSelection"))

	var req model.PutSelectionRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid selection request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.Select(r.Context(), req.Collections); err != nil {
		logger.Warn("Failed to change selection", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Selection changed", slog.Int("selected", len(req.Collections)))
	webutil.RespondWithJSON(w, http.StatusOK, h.settings(), logger)
}

func (h *SettingsHandler) settings() *model.SettingsResponse {
	overview := h.service.Overview()
	return &model.SettingsResponse{
		Mode:      overview.Mode,
		Modes:     model.ReviewModeNames(),
		Selected:  overview.Selected,
		ItemCount: overview.SelectedItemCount,
	}
}
