// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// SessionHeader はクイズセッションIDを受け渡すヘッダー
const SessionHeader = "X-Quiz-Session"

// デバッグログに残すボディの上限 (コレクションのアップロードは大きくなりうる)
const maxLoggedBody = 4 << 10

// logCtxKey はコンテキストにロガーを格納するためのキーです。
type logCtxKey struct{}

// sensitiveHeaders はログ出力時に値をマスキングするヘッダー名 (小文字)
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"x-api-key":     true,
}

// responseRecorder はステータスコードと先頭のボディを記録する
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int
	body       bytes.Buffer
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	rr.statusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rr.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rr.body.Write(b[:room])
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.written += n
	return n, err
}

// LoggingMiddleware はリクエストIDとセッションID付きのロガーをコンテキストに入れ、
// 完了時にステータスとレイテンシを出力します。デバッグレベルではヘッダーとボディも出します。
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			requestLogger := logger.With(slog.String("req_id", chimiddleware.GetReqID(r.Context())))
			if sid := r.Header.Get(SessionHeader); sid != "" {
				requestLogger = requestLogger.With(slog.String("session_id", sid))
			}
			r = r.WithContext(WithLogger(r.Context(), requestLogger))

			requestLogger.Info("Request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			debug := logger.Enabled(r.Context(), slog.LevelDebug)
			var reqBody []byte
			if debug && r.Body != nil {
				// 上限+1 バイトだけ先読みし、残りは元のボディから続けて読ませる
				reqBody, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
				r.Body = readCloser{
					Reader: io.MultiReader(bytes.NewReader(reqBody), r.Body),
					Closer: r.Body,
				}
			}

			rr := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rr, r)

			level := slog.LevelInfo
			if rr.statusCode >= 500 {
				level = slog.LevelError
			} else if rr.statusCode >= 400 {
				level = slog.LevelWarn
			}
			requestLogger.Log(r.Context(), level, "Request completed",
				slog.Int("status", rr.statusCode),
				slog.Float64("latency_ms", float64(time.Since(startTime).Nanoseconds())/1e6),
				slog.Int("bytes_out", rr.written),
			)

			if debug {
				requestLogger.Debug("Request detail",
					slog.Any("headers", formatHeaders(r.Header)),
					slog.String("body", truncate(reqBody)),
				)
				requestLogger.Debug("Response detail",
					slog.Int("status", rr.statusCode),
					slog.Any("headers", formatHeaders(rr.Header())),
					slog.String("body", rr.body.String()),
				)
			}
		})
	}
}

// WithLogger はロガーをコンテキストに格納します。
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, logger)
}

// LoggerOr はコンテキストのロガーを返し、なければ fallback を返します。
func LoggerOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(logCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

func formatHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			result[key] = "[SENSITIVE]"
			continue
		}
		result[key] = strings.Join(values, ", ")
	}
	return result
}

// readCloser は先読みしたボディを戻しつつ元の Close を残す
type readCloser struct {
	io.Reader
	io.Closer
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}
