// internal/handlers/health_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"flashcard_quiz/internal/middleware"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHealthHandler(db *gorm.DB, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, logger: logger}
}

// Health はDB接続を確認する
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger)

	sqlDB, err := h.db.DB()
	if err != nil {
		logger.ErrorContext(r.Context(), "Health check failed: could not get DB object", slog.Any("error", err))
		http.Error(w, "Health check failed", http.StatusInternalServerError)
		return
	}
	if err := sqlDB.PingContext(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "Health check failed: could not ping DB", slog.Any("error", err))
		http.Error(w, "Health check failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
