// internal/webutil/request.go
package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"flashcard_quiz/internal/model"
)

// MaxUploadBytes はアップロードされるコレクションファイルの上限
const MaxUploadBytes = 10 << 20

// DecodeJSONBody はリクエストボディをデコードします
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is empty", model.ErrInvalidInput)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	return nil
}

// DecodeAndValidate はボディをデコードしてから構造体タグで検証します
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	if err := DecodeJSONBody(r, dst); err != nil {
		return model.NewAppError("INVALID_REQUEST_BODY", "The request body is not valid JSON for this endpoint.", "", err)
	}
	if err := Validator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationErrorResponse(validationErrors)
		}
		return err
	}
	return nil
}

// ReadBody はアップロードされた生のボディを上限付きで読み込みます
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("%w: request body is empty", model.ErrInvalidInput)
	}
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	return data, nil
}
