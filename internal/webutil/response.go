// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"flashcard_quiz/internal/model"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	statusCode := MapErrorToStatusCode(err)

	var errResp model.APIErrorResponse
	var appErr *model.AppError
	switch {
	case errors.As(err, &appErr):
		errResp = model.APIErrorResponse{Error: appErr.Detail}
	case statusCode != http.StatusInternalServerError:
		// センチネルエラーはそのままコードとメッセージにする
		errResp = model.APIErrorResponse{Error: model.ErrorDetail{
			Code:    errorCode(err),
			Message: err.Error(),
		}}
	default:
		// 予期せぬエラーは詳細をログにだけ出す
		logger.Error("Unhandled error", slog.Any("error", err))
		errResp = model.APIErrorResponse{Error: model.ErrorDetail{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "An internal server error occurred.",
		}}
	}

	RespondWithJSON(w, statusCode, errResp, logger)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrSchema):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrEmptySelection):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, model.ErrNoSession):
		return "NO_SESSION"
	case errors.Is(err, model.ErrSchema):
		return "SCHEMA_ERROR"
	case errors.Is(err, model.ErrEmptySelection):
		return "EMPTY_SELECTION"
	case errors.Is(err, model.ErrInvalidInput):
		return "INVALID_INPUT"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("Error marshaling JSON response", slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"Failed to build the response."}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewValidationErrorResponse はバリデーションエラーを翻訳済みメッセージの AppError にまとめる
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string
	for _, fe := range errs {
		fields = append(fields, fe.Field())
		messages = append(messages, fe.Translate(Trans))
	}
	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, "; "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
