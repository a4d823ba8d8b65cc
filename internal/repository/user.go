// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/quizzlyhq/quizzly/internal/models"
)

// CreateUser inserts a new user and returns it with its assigned ID.
func (r *Repository) CreateUser(ctx context.Context, name, email string, passwordHash *string) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		name, email, passwordHash)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// MarkEmailVerified sets the verified timestamp and the canonical email
// for a user. The email is written alongside the timestamp so the address
// the token was issued for becomes the address of record.
func (r *Repository) MarkEmailVerified(ctx context.Context, id int64, email string, verifiedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, email_verified_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		email, verifiedAt, id)
	return err
}

// UpdateUserPassword replaces a user's stored credential hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id)
	return err
}
