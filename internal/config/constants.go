// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "flashquiz"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultDatabaseDriver = "sqlite"
	DefaultDatabaseURL    = "flashquiz.db"
	DefaultServerPort     = ":8080"
	DefaultRequestTimeout = 60
	DefaultLogLevel       = "info"
)
