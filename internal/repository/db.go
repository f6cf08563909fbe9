// internal/repository/db.go
package repository

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	slogGorm "github.com/orandin/slog-gorm" // slogGormはエイリアス
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flashcard_quiz/internal/model"
)

// 対応しているドライバ
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewDB は driver に応じてDBへ接続する。dsn は sqlite ならファイルパス、postgres なら接続URL。
func NewDB(driver, dsn string, appLogger *slog.Logger) (*gorm.DB, error) {
	if appLogger == nil {
		appLogger = slog.Default()
	}

	// === slog を利用する GORM Logger の設定 ===
	var gormLogLevel gormlogger.LogLevel
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		gormLogLevel = gormlogger.Info
	} else {
		gormLogLevel = gormlogger.Warn
	}
	gormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithTraceAll(),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	).LogMode(gormLogLevel)

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.String("driver", driver), slog.Any("error", err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	// sqlite は書き込みを1接続に絞る
	if dialector.Name() == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		appLogger.Error("Failed to migrate database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	appLogger.Info("Database connection established with GORM", slog.String("driver", dialector.Name()))
	return db, nil
}

// Migrate はアプリケーションのテーブルを作成する
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.KVEntry{})
}
