// internal/service/helpers_test.go
package service_test

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flashcard_quiz/internal/repository"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupTestDB はテストごとに独立したインメモリDBを返す
func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

const biologyDeck = `[
	{"id": 1, "front": {"Term": "Mitosis"}, "back": {"Steps": ["Prophase", "Metaphase"]}},
	{"id": 2, "front": {"Term": "Meiosis"}, "back": {"Result": "four cells"}}
]`

const physicsDeck = `[
	{"id": "e", "front": {"Q": "Energy?"}, "back": {"A": "$E=mc^2$"}}
]`
