// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"flashcard_quiz/internal/config"
	"flashcard_quiz/internal/repository"
	"flashcard_quiz/internal/service"
)

// app はサブコマンド間で共有する依存。DBは必要になった時点で開く。
type app struct {
	configPath string
	dbDriver   string
	dbURL      string
	logLevel   string

	logger  *slog.Logger
	db      *gorm.DB
	library service.LibraryService
}

// NewRootCmd はすべてのサブコマンドを登録したルートコマンドを返す
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Flashcard quiz over JSON collections",
		Long: `flashquiz imports flashcard collections from JSON files and quizzes you on them,
either in the terminal or through an HTTP API. Card content may contain $inline$ and
$$display$$ math.`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "configs", "directory containing config.yaml")
	flags.StringVar(&a.dbDriver, "db-driver", "", "database driver (sqlite|postgres), overrides config")
	flags.StringVar(&a.dbURL, "db", "", "database file or URL, overrides config")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error), overrides config")

	rootCmd.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newListCmd(a),
		newModeCmd(a),
		newRemoveCmd(a),
		newReviewCmd(a),
	)
	return rootCmd
}

// Execute はルートコマンドを実行する
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// open は設定を読み込み、ロガー・DB・ライブラリを初期化する
func (a *app) open(cmd *cobra.Command) error {
	if a.library != nil {
		return nil
	}
	if err := config.LoadConfig(a.configPath); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if a.dbDriver != "" {
		config.Cfg.Database.Driver = a.dbDriver
	}
	if a.dbURL != "" {
		config.Cfg.Database.URL = a.dbURL
	}
	switch {
	case a.logLevel != "":
		config.Cfg.Log.Level = a.logLevel
	case cmd.Name() != "serve":
		// 端末向けのコマンドでは警告以上だけ出す
		config.Cfg.Log.Level = "warn"
	}

	a.logger = NewLogger(cmd.ErrOrStderr(), config.Cfg.Log.Level)
	slog.SetDefault(a.logger)

	db, err := repository.NewDB(config.Cfg.Database.Driver, config.Cfg.Database.URL, a.logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db

	library := service.NewLibraryService(db, repository.NewGormKVStore(), a.logger)
	if err := library.Load(contextOf(cmd)); err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	a.library = library
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.db = nil
	a.library = nil
	return sqlDB.Close()
}

// NewLogger は APP_ENV=dev なら tint、それ以外は JSON のハンドラでロガーを作る
func NewLogger(w io.Writer, level string) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	return slog.New(handler).With(slog.String("app", config.AppName))
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
