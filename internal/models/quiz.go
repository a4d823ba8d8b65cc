// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Quiz is a user-authored quiz.
type Quiz struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	UserID      int64     `db:"user_id" json:"user_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Question belongs to a quiz.
type Question struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	QuizID      int64     `db:"quiz_id" json:"quiz_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Option is one answer choice for a question.
type Option struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	IsCorrect  bool      `db:"is_correct" json:"is_correct"`
	QuestionID int64     `db:"question_id" json:"question_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
