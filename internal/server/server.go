// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/quizzlyhq/quizzly/internal/config"
	"github.com/quizzlyhq/quizzly/internal/database"
	"github.com/quizzlyhq/quizzly/internal/handlers"
	"github.com/quizzlyhq/quizzly/internal/ratelimit"
	"github.com/quizzlyhq/quizzly/internal/repository"
	"github.com/quizzlyhq/quizzly/internal/services/auth"
	"github.com/quizzlyhq/quizzly/internal/services/email"
	"github.com/quizzlyhq/quizzly/internal/services/quiz"
	"github.com/quizzlyhq/quizzly/internal/services/token"
	"github.com/quizzlyhq/quizzly/internal/session"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository
	repo := repository.New(db)

	// Services
	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}

	sessions, err := session.NewManager(
		cfg.Session.HashKey, cfg.Session.BlockKey,
		cfg.Session.CookieName, cfg.Session.MaxAge, cfg.CookieSecure())
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	limiter := ratelimit.New()
	tokens := token.NewManager(repo, repo)
	authService := auth.NewService(repo, tokens, mailer, limiter)
	quizService := quiz.NewService(repo, limiter)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, repo, authService, quizService, sessions)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, repo *repository.Repository, authService *auth.Service, quizService *quiz.Service, sessions *session.Manager) {
	h := handlers.New(repo)
	e.GET("/health", h.Health)

	authHandler := handlers.NewAuth(authService, sessions)
	a := e.Group("/auth")
	a.POST("/login", authHandler.Login)
	a.POST("/register", authHandler.Register)
	a.POST("/reset", authHandler.Reset)
	a.POST("/new-password", authHandler.NewPassword)
	a.POST("/new-verification", authHandler.NewVerification)
	a.POST("/logout", authHandler.Logout)

	quizHandler := handlers.NewQuiz(quizService, sessions)
	e.POST("/quizzes", quizHandler.Create)
	e.GET("/quizzes", quizHandler.List)
	e.GET("/quizzes/:id", quizHandler.Get)
	e.GET("/quizzes/:id/questions", quizHandler.Questions)
	e.GET("/quizzes/:id/author", quizHandler.Author)
	e.GET("/questions/:id/options", quizHandler.Options)
	e.GET("/users/:id/quizzes", quizHandler.ByUser)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
