//go:build integration

// internal/repository/kv_repository_integ_test.go
package repository_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"flashcard_quiz/internal/model"
	"flashcard_quiz/internal/repository"
)

var pgDB *gorm.DB

// PostgreSQLコンテナを起動して postgres ドライバ経由の動作を確認する
func TestMain(m *testing.M) {
	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=flashcard_quiz",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL resource: %s", err)
	}

	dsn := fmt.Sprintf("postgres://user:secret@%s/flashcard_quiz?sslmode=disable", resource.GetHostPort("5432/tcp"))
	if err = pool.Retry(func() error {
		var errRetry error
		pgDB, errRetry = repository.NewDB(repository.DriverPostgres, dsn, testLogger)
		return errRetry
	}); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("Could not connect to PostgreSQL: %s", err)
	}
	if err := repository.Migrate(pgDB); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("Could not migrate: %s", err)
	}

	code := m.Run()

	if sqlDB, err := pgDB.DB(); err == nil {
		sqlDB.Close()
	}
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func TestKVStore_Postgres(t *testing.T) {
	ctx := context.Background()
	store := repository.NewGormKVStore()

	require.NoError(t, store.Set(ctx, pgDB, model.KeyQuizMode, "back-to-front"))
	require.NoError(t, store.Set(ctx, pgDB, model.KeyQuizMode, "random"))

	got, err := store.Get(ctx, pgDB, model.KeyQuizMode)
	require.NoError(t, err)
	assert.Equal(t, "random", got)

	require.NoError(t, store.Delete(ctx, pgDB, model.KeyQuizMode))
	_, err = store.Get(ctx, pgDB, model.KeyQuizMode)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
