// internal/handlers/router_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flashcard_quiz/internal/handlers"
	"flashcard_quiz/internal/middleware"
	"flashcard_quiz/internal/repository"
	"flashcard_quiz/internal/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const biologyDeck = `[
	{"id": 1, "front": {"Term": "Mitosis"}, "back": {"Steps": ["Prophase", "Metaphase"]}},
	{"id": 2, "front": {"Term": "Meiosis"}, "back": {"Result": "four cells"}}
]`

const physicsDeck = `[
	{"id": "e", "front": {"Q": "Energy?"}, "back": {"A": "$E=mc^2$"}}
]`

type testServer struct {
	router  *chi.Mux
	db      *gorm.DB
	library service.LibraryService
}

// newTestServer はインメモリDB上の本物のサービスでルーターを組み立てる
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	library := service.NewLibraryService(db, repository.NewGormKVStore(), testLogger)
	require.NoError(t, library.Load(context.Background()))
	quizSvc := service.NewQuizService(library, nil, rand.New(rand.NewPCG(1, 2)), testLogger)

	router := handlers.NewRouter(handlers.RouterDeps{
		DB:      db,
		Library: library,
		Quiz:    quizSvc,
		CORS: cors.Options{
			AllowedOrigins: []string{"*"},
			ExposedHeaders: []string{middleware.SessionHeader},
		},
		Logger: testLogger,
	})
	return &testServer{router: router, db: db, library: library}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}
