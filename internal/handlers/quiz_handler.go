// internal/handlers/quiz_handler.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"flashcard_quiz/internal/middleware"
	"flashcard_quiz/internal/service"
	"flashcard_quiz/internal/webutil"
)

type QuizHandler struct {
	service service.QuizService
	logger  *slog.Logger
}

func NewQuizHandler(s service.QuizService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{service: s, logger: logger}
}

// StartQuiz は選択中のコレクションから新しいセッションを始める。
// セッションIDはレスポンスボディと X-Quiz-Session ヘッダーで返す。
func (h *QuizHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "StartQuiz"))

	view, err := h.service.Start(r.Context())
	if err != nil {
		logger.Warn("Failed to start quiz", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	w.Header().Set(middleware.SessionHeader, view.SessionID)
	logger.Info("Quiz started", slog.String("session_id", view.SessionID), slog.Int("total", view.Total))
	webutil.RespondWithJSON(w, http.StatusCreated, view, logger)
}

func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "GetQuiz", h.service.Current)
}

func (h *QuizHandler) FlipCard(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "FlipCard", h.service.Flip)
}

func (h *QuizHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "NextCard", h.service.Next)
}

func (h *QuizHandler) RestartQuiz(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "RestartQuiz", h.service.Restart)
}

// QuitQuiz はセッションを破棄する
func (h *QuizHandler) QuitQuiz(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", "QuitQuiz"))

	if err := h.service.Quit(r.Context(), r.Header.Get(middleware.SessionHeader)); err != nil {
		logger.Warn("Failed to quit quiz", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Quiz quit")
	w.WriteHeader(http.StatusNoContent)
}

type quizAction func(ctx context.Context, sessionID string) (*service.QuizView, error)

func (h *QuizHandler) respond(w http.ResponseWriter, r *http.Request, name string, action quizAction) {
	logger := middleware.LoggerOr(r.Context(), h.logger).With(slog.String("handler", name))

	view, err := action(r.Context(), r.Header.Get(middleware.SessionHeader))
	if err != nil {
		logger.Warn("Quiz action failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Debug("Quiz action completed",
		slog.String("state", view.State.String()),
		slog.Int("position", view.Position),
		slog.Int("total", view.Total),
	)
	w.Header().Set(middleware.SessionHeader, view.SessionID)
	webutil.RespondWithJSON(w, http.StatusOK, view, logger)
}
