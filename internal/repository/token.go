// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/quizzlyhq/quizzly/internal/models"
)

// tokenTable maps a token kind to its table. The two kinds are stored in
// separate tables so their namespaces never overlap.
func tokenTable(kind models.TokenKind) (string, error) {
	switch kind {
	case models.TokenKindVerification:
		return "verification_tokens", nil
	case models.TokenKindPasswordReset:
		return "password_reset_tokens", nil
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
}

// CreateToken inserts a token row and returns it with its assigned ID.
func (r *Repository) CreateToken(ctx context.Context, kind models.TokenKind, email, token string, expiresAt time.Time) (*models.Token, error) {
	table, err := tokenTable(kind)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (email, token, expires_at) VALUES (?, ?, ?)`,
		email, token, expiresAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var row models.Token
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM `+table+` WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &row, nil
}

// GetTokenByValue retrieves a token row by its raw token value.
func (r *Repository) GetTokenByValue(ctx context.Context, kind models.TokenKind, token string) (*models.Token, error) {
	table, err := tokenTable(kind)
	if err != nil {
		return nil, err
	}
	var row models.Token
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM `+table+` WHERE token = ?`, token); err != nil {
		return nil, wrapError(err)
	}
	return &row, nil
}

// GetTokenByEmail retrieves the token row owned by an email address.
func (r *Repository) GetTokenByEmail(ctx context.Context, kind models.TokenKind, email string) (*models.Token, error) {
	table, err := tokenTable(kind)
	if err != nil {
		return nil, err
	}
	var row models.Token
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM `+table+` WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &row, nil
}

// DeleteToken deletes a token row by ID.
func (r *Repository) DeleteToken(ctx context.Context, kind models.TokenKind, id int64) error {
	table, err := tokenTable(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	return err
}
