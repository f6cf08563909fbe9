// internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"flashcard_quiz/internal/config"
	"flashcard_quiz/internal/content"
	"flashcard_quiz/internal/handlers"
	"flashcard_quiz/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			if port != "" {
				config.Cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, overrides config (e.g. :8080)")
	return cmd
}

// serve はサーバーを起動し、ctx がキャンセルされたらグレースフルに停止する
func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	formatter := content.NewHTMLFormatter(content.MathJaxTypesetter{}, logger)
	quizService := service.NewQuizService(a.library, formatter, nil, logger)

	router := handlers.NewRouter(handlers.RouterDeps{
		DB:      a.db,
		Library: a.library,
		Quiz:    quizService,
		CORS: cors.Options{
			AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
			AllowedMethods:   config.Cfg.CORS.AllowedMethods,
			AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
			ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
			AllowCredentials: config.Cfg.CORS.AllowCredentials,
			MaxAge:           config.Cfg.CORS.MaxAge,
		},
		RequestTimeout: time.Duration(config.Cfg.Server.RequestTimeout) * time.Second,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}
	logger.Info("Server exiting")
	return nil
}
