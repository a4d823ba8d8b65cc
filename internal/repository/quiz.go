// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/quizzlyhq/quizzly/internal/models"
)

// CreateQuiz inserts a quiz and returns it with its assigned ID.
func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) (*models.Quiz, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO quizzes (title, description, user_id) VALUES (?, ?, ?)`,
		quiz.Title, quiz.Description, quiz.UserID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetQuizByID(ctx, id)
}

// GetQuizByID retrieves a quiz by ID.
func (r *Repository) GetQuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, `SELECT * FROM quizzes WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &quiz, nil
}

// ListQuizzes returns all quizzes, newest first.
func (r *Repository) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.SelectContext(ctx, &quizzes, `SELECT * FROM quizzes ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// ListQuizzesByUserID returns all quizzes authored by a user, newest first.
func (r *Repository) ListQuizzesByUserID(ctx context.Context, userID int64) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.SelectContext(ctx, &quizzes,
		`SELECT * FROM quizzes WHERE user_id = ? ORDER BY created_at DESC`, userID); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// CreateQuestion inserts a question and returns it with its assigned ID.
func (r *Repository) CreateQuestion(ctx context.Context, question *models.Question) (*models.Question, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO questions (title, description, quiz_id) VALUES (?, ?, ?)`,
		question.Title, question.Description, question.QuizID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var created models.Question
	if err := r.db.GetContext(ctx, &created, `SELECT * FROM questions WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &created, nil
}

// ListQuestionsByQuizID returns the questions of a quiz in creation order.
func (r *Repository) ListQuestionsByQuizID(ctx context.Context, quizID int64) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions,
		`SELECT * FROM questions WHERE quiz_id = ? ORDER BY id`, quizID); err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateOption inserts an option and returns it with its assigned ID.
func (r *Repository) CreateOption(ctx context.Context, option *models.Option) (*models.Option, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO options (title, is_correct, question_id) VALUES (?, ?, ?)`,
		option.Title, option.IsCorrect, option.QuestionID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var created models.Option
	if err := r.db.GetContext(ctx, &created, `SELECT * FROM options WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &created, nil
}

// ListOptionsByQuestionID returns the options of a question in creation order.
func (r *Repository) ListOptionsByQuestionID(ctx context.Context, questionID int64) ([]models.Option, error) {
	var options []models.Option
	if err := r.db.SelectContext(ctx, &options,
		`SELECT * FROM options WHERE question_id = ? ORDER BY id`, questionID); err != nil {
		return nil, err
	}
	return options, nil
}
