// internal/handlers/collection_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flashcard_quiz/internal/middleware"
	"flashcard_quiz/internal/service"
	"flashcard_quiz/internal/webutil"
)

type CollectionHandler struct {
	service service.LibraryService
	logger  *slog.Logger
}

func NewCollectionHandler(s service.LibraryService, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionHandler{
		service: s,
		logger:  logger,
	}
}

// GetCollections はコレクション一覧と選択状態を返すハンドラ
func (h *CollectionHandler) GetCollections(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "GetCollections"))

	overview := h.service.Overview()
	logger.Info("Collections listed", slog.Int("count", len(overview.Collections)))
	webutil.RespondWithJSON(w, http.StatusOK, overview, logger)
}

// PutCollection はボディのJSONファイルを name のコレクションとして取り込むハンドラ。
// 同名のコレクションは置き換える。
func (h *CollectionHandler) PutCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger := middleware.LoggerOr(r.Context(), h.logger).With(
		slog.String("handler", "PutCollection"),
		slog.String("collection", name),
	)

	data, err := webutil.ReadBody(w, r)
	if err != nil {
		logger.Warn("Failed to read upload body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}

	report, err := h.service.Import(r.Context(), name, data)
	if err != nil {
		logger.Warn("Collection import rejected", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Collection imported",
		slog.Int("accepted", report.Accepted),
		slog.Int("dropped", len(report.Dropped)),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, report, logger)
}

// DeleteCollection は1件のコレクションを削除するハンドラ
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger := middleware.LoggerOr(r.Context(), h.logger).With(
		slog.String("handler", "DeleteCollection"),
		slog.String("collection", name),
	)

	if err := h.service.Remove(r.Context(), name); err != nil {
		logger.Warn("Failed to remove collection", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Collection removed")
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCollections は全コレクションとモード設定を削除するハンドラ
func (h *CollectionHandler) DeleteCollections(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "DeleteCollections"))

	if err := h.service.RemoveAll(r.Context()); err != nil {
		logger.Error("Failed to remove all collections", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("All collections removed")
	w.WriteHeader(http.StatusNoContent)
}
