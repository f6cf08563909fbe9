// internal/model/error.go
package model

import "errors"

// アプリケーション固有のエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")

	// アップロードされたデータがアイテムスキーマに合わない
	ErrSchema = errors.New("schema error")
	// 選択中のコレクションにアイテムが一件もない
	ErrEmptySelection = errors.New("nothing to review")
	// 永続化データが読めない、または壊れている
	ErrPersistenceCorrupt = errors.New("persisted data corrupt")
	// 進行中のクイズセッションがない、またはセッションIDが古い
	ErrNoSession = errors.New("no active quiz session")
)

// ErrorDetail はクライアントに返すエラー情報
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はクライアント向けの詳細と原因となったエラーを保持する
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
		Err: err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Detail.Code + ": " + e.Detail.Message + ": " + e.Err.Error()
	}
	return e.Detail.Code + ": " + e.Detail.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
