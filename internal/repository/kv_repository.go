// internal/repository/kv_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flashcard_quiz/internal/model"
)

// KVStore は設定とコレクションを文字列で保存するキーバリューストア
type KVStore interface {
	Get(ctx context.Context, db *gorm.DB, key string) (string, error) // 見つからなければ model.ErrNotFound
	Set(ctx context.Context, db *gorm.DB, key, value string) error
	Delete(ctx context.Context, db *gorm.DB, key string) error // 存在しなくてもエラーにしない
}

type gormKVStore struct {
	// DB接続はService層から渡される想定
}

func NewGormKVStore() KVStore {
	return &gormKVStore{}
}

func (r *gormKVStore) Get(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if key == "" {
		return "", model.ErrNotFound
	}
	var entry model.KVEntry
	result := db.WithContext(ctx).Where(&model.KVEntry{Key: key}).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", model.ErrNotFound
		}
		return "", result.Error
	}
	return entry.Value, nil
}

func (r *gormKVStore) Set(ctx context.Context, db *gorm.DB, key, value string) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	// 既存キーは値を上書きする
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *gormKVStore) Delete(ctx context.Context, db *gorm.DB, key string) error {
	if key == "" {
		return nil
	}
	return db.WithContext(ctx).Where(&model.KVEntry{Key: key}).Delete(&model.KVEntry{}).Error
}
