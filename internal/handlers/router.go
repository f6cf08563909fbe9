// internal/handlers/router.go
package handlers

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"flashcard_quiz/internal/middleware"
	"flashcard_quiz/internal/service"
)

// RouterDeps はルーター構築に必要な依存
type RouterDeps struct {
	DB             *gorm.DB
	Library        service.LibraryService
	Quiz           service.QuizService
	CORS           cors.Options
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter はミドルウェアと /api/v1 以下のルートを組み立てる
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	collectionHandler := NewCollectionHandler(deps.Library, logger)
	settingsHandler := NewSettingsHandler(deps.Library, logger)
	quizHandler := NewQuizHandler(deps.Quiz, logger)
	healthHandler := NewHealthHandler(deps.DB, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(cors.New(deps.CORS).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollections)
			r.Delete("/", collectionHandler.DeleteCollections)
			r.Put("/{name}", collectionHandler.PutCollection)
			r.Delete("/{name}", collectionHandler.DeleteCollection)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/mode", settingsHandler.PutMode)
			r.Put("/selection", settingsHandler.PutSelection)
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/", quizHandler.StartQuiz)
			r.Get("/", quizHandler.GetQuiz)
			r.Delete("/", quizHandler.QuitQuiz)
			r.Post("/flip", quizHandler.FlipCard)
			r.Post("/next", quizHandler.NextCard)
			r.Post("/restart", quizHandler.RestartQuiz)
		})
	})

	r.Get("/health", healthHandler.Health)
	return r
}
