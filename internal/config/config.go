// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Driver string `mapstructure:"driver"`
		URL    string `mapstructure:"url"`
	} `mapstructure:"database"`
	Server struct {
		Port           string `mapstructure:"port"`
		RequestTimeout int    `mapstructure:"request_timeout"` // 秒
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
	App struct {
		Color bool `mapstructure:"color"`
	} `mapstructure:"app"`
}

var Cfg Config

// LoadConfig は .env を読み込んだ後、path の config.yaml と APP_ 接頭辞の環境変数から設定を組み立てる。
// 設定ファイルがなければデフォルト値で続行する。
func LoadConfig(path string) error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on the environment")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("APP") // 例: APP_DATABASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.request_timeout", DefaultRequestTimeout)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-Quiz-Session"})
	v.SetDefault("cors.exposed_headers", []string{"X-Quiz-Session"})
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("app.color", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}

	Cfg = cfg
	slog.Debug("Config loaded",
		slog.String("driver", Cfg.Database.Driver),
		slog.String("port", Cfg.Server.Port),
		slog.String("log_level", Cfg.Log.Level),
	)
	return nil
}
