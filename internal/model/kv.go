// internal/model/kv.go
package model

import "time"

// 永続化キー
const (
	KeyQuizData = "flashcardQuizData" // コレクション名 → アイテム配列 のJSON
	KeyQuizMode = "flashcardQuizMode" // レビューモード名
)

// KVEntry はキーと値の組を保存するテーブル
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
