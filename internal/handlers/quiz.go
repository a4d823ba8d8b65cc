// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quizzlyhq/quizzly/internal/repository"
	"github.com/quizzlyhq/quizzly/internal/services/quiz"
	"github.com/quizzlyhq/quizzly/internal/session"
	"github.com/quizzlyhq/quizzly/internal/validate"
)

// QuizHandlers contains handlers for quiz resources.
type QuizHandlers struct {
	quizzes  *quiz.Service
	sessions *session.Manager
}

// NewQuiz creates a new QuizHandlers instance.
func NewQuiz(quizzes *quiz.Service, sessions *session.Manager) *QuizHandlers {
	return &QuizHandlers{
		quizzes:  quizzes,
		sessions: sessions,
	}
}

// Create handles POST /quizzes.
func (h *QuizHandlers) Create(c echo.Context) error {
	var userID int64
	if user, err := h.sessions.Parse(c.Request()); err == nil {
		userID = user.ID
	}

	var input quiz.CreateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid quiz"})
	}

	created, err := h.quizzes.Create(c.Request().Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrNotAuthenticated):
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		case errors.Is(err, quiz.ErrRateLimited):
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// List handles GET /quizzes.
func (h *QuizHandlers) List(c echo.Context) error {
	quizzes, err := h.quizzes.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quizzes)
}

// Get handles GET /quizzes/:id.
func (h *QuizHandlers) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid quiz id"})
	}

	q, err := h.quizzes.ByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "quiz not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// Questions handles GET /quizzes/:id/questions.
func (h *QuizHandlers) Questions(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid quiz id"})
	}

	questions, err := h.quizzes.QuestionsByQuizID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questions)
}

// Options handles GET /questions/:id/options.
func (h *QuizHandlers) Options(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid question id"})
	}

	options, err := h.quizzes.OptionsByQuestionID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, options)
}

// ByUser handles GET /users/:id/quizzes.
func (h *QuizHandlers) ByUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	quizzes, err := h.quizzes.ByUserID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quizzes)
}

// Author handles GET /quizzes/:id/author.
func (h *QuizHandlers) Author(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid quiz id"})
	}

	user, err := h.quizzes.AuthorByQuizID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "quiz not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}
