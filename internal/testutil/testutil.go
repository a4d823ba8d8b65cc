// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizzlyhq/quizzly/internal/database"
	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/repository"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a user with a bcrypt-hashed password. An empty
// password creates an account without credentials (external-provider only).
func NewTestUser(t *testing.T, repo *repository.Repository, name, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()

	var hash *string
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		s := string(h)
		hash = &s
	}

	user, err := repo.CreateUser(ctx, name, email, hash)
	require.NoError(t, err)
	return user
}

// NewVerifiedTestUser creates a user whose email is already confirmed.
func NewVerifiedTestUser(t *testing.T, repo *repository.Repository, name, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()

	user := NewTestUser(t, repo, name, email, password)
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, email, user.CreatedAt))

	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	return user
}

// NewTestQuiz creates a quiz owned by the given user.
func NewTestQuiz(t *testing.T, repo *repository.Repository, userID int64, title string) *models.Quiz {
	t.Helper()
	quiz, err := repo.CreateQuiz(context.Background(), &models.Quiz{Title: title, UserID: userID})
	require.NoError(t, err)
	return quiz
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
