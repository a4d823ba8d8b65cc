// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package quiz implements the quiz actions. Creation is authenticated and
// rate limited per author; reads are open.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/ratelimit"
	"github.com/quizzlyhq/quizzly/internal/repository"
)

var (
	// ErrNotAuthenticated is returned when no user is signed in. Its text
	// is shown to the user verbatim.
	ErrNotAuthenticated = errors.New("You must be logged in to create a quiz.")
	// ErrRateLimited is returned when the author exceeded the creation
	// limit. Its text is shown to the user verbatim.
	ErrRateLimited = errors.New("Too many requests. Please wait before creating another quiz.")
)

// Service wires the collaborators for quiz actions.
type Service struct {
	repo    *repository.Repository
	limiter *ratelimit.Limiter
}

// NewService creates a quiz service.
func NewService(repo *repository.Repository, limiter *ratelimit.Limiter) *Service {
	return &Service{repo: repo, limiter: limiter}
}

// OptionInput is one answer choice in a create request.
type OptionInput struct {
	Title     string `json:"title" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionInput is one question in a create request.
type QuestionInput struct {
	Title       string        `json:"title" validate:"required"`
	Description *string       `json:"description,omitempty"`
	Options     []OptionInput `json:"options" validate:"required,min=2,dive"`
}

// CreateInput is the payload for creating a quiz.
type CreateInput struct {
	Title       string          `json:"title" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Questions   []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// Create stores a quiz with its questions and options for the given
// author. The limiter key combines the action with the author so other
// actions and other authors are unaffected.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (*models.Quiz, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	if !s.limiter.Allow(fmt.Sprintf("create-quiz:%d", userID)) {
		slog.Warn("create_quiz_rate_limited", "user_id", userID)
		return nil, ErrRateLimited
	}

	created, err := s.repo.CreateQuiz(ctx, &models.Quiz{
		Title:       input.Title,
		Description: input.Description,
		UserID:      userID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating quiz: %w", err)
	}

	for _, q := range input.Questions {
		question, err := s.repo.CreateQuestion(ctx, &models.Question{
			Title:       q.Title,
			Description: q.Description,
			QuizID:      created.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("creating question: %w", err)
		}
		for _, o := range q.Options {
			if _, err := s.repo.CreateOption(ctx, &models.Option{
				Title:      o.Title,
				IsCorrect:  o.IsCorrect,
				QuestionID: question.ID,
			}); err != nil {
				return nil, fmt.Errorf("creating option: %w", err)
			}
		}
	}

	slog.Info("quiz_created", "quiz_id", created.ID, "user_id", userID)
	return created, nil
}

// All returns every quiz.
func (s *Service) All(ctx context.Context) ([]models.Quiz, error) {
	return s.repo.ListQuizzes(ctx)
}

// ByID returns one quiz, or repository.ErrNotFound.
func (s *Service) ByID(ctx context.Context, id int64) (*models.Quiz, error) {
	return s.repo.GetQuizByID(ctx, id)
}

// ByUserID returns all quizzes authored by a user.
func (s *Service) ByUserID(ctx context.Context, userID int64) ([]models.Quiz, error) {
	return s.repo.ListQuizzesByUserID(ctx, userID)
}

// QuestionsByQuizID returns the questions of a quiz.
func (s *Service) QuestionsByQuizID(ctx context.Context, quizID int64) ([]models.Question, error) {
	return s.repo.ListQuestionsByQuizID(ctx, quizID)
}

// OptionsByQuestionID returns the options of a question.
func (s *Service) OptionsByQuestionID(ctx context.Context, questionID int64) ([]models.Option, error) {
	return s.repo.ListOptionsByQuestionID(ctx, questionID)
}

// AuthorByQuizID resolves the user who created a quiz.
func (s *Service) AuthorByQuizID(ctx context.Context, quizID int64) (*models.User, error) {
	q, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, q.UserID)
}
