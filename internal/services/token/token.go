// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token owns the lifecycle of single-use, expiring tokens for
// email verification and password reset. The store only persists rows;
// expiry, supersession and single-use rules all live here.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/repository"
)

// Expiry is how long an issued token stays valid.
const Expiry = time.Hour

var (
	// ErrTokenNotFound is returned when no row matches the presented value,
	// including replays of an already redeemed token.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired is returned for a token past its deadline. The row is
	// left in place; it will be superseded by the next issue for its owner.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound is returned when a valid token's owner no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// Store is the persistence collaborator for token rows.
type Store interface {
	GetTokenByEmail(ctx context.Context, kind models.TokenKind, email string) (*models.Token, error)
	GetTokenByValue(ctx context.Context, kind models.TokenKind, token string) (*models.Token, error)
	CreateToken(ctx context.Context, kind models.TokenKind, email, token string, expiresAt time.Time) (*models.Token, error)
	DeleteToken(ctx context.Context, kind models.TokenKind, id int64) error
}

// UserStore resolves token owners and applies redemption effects.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id int64, email string, verifiedAt time.Time) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

// Manager issues and redeems tokens of both kinds.
type Manager struct {
	store Store
	users UserStore
	now   func() time.Time
}

// NewManager creates a Manager over the given stores.
func NewManager(store Store, users UserStore) *Manager {
	return &Manager{
		store: store,
		users: users,
		now:   time.Now,
	}
}

// NewManagerWithClock creates a Manager with an injected clock, for tests.
func NewManagerWithClock(store Store, users UserStore, now func() time.Time) *Manager {
	return &Manager{
		store: store,
		users: users,
		now:   now,
	}
}

// Issue creates a fresh token for email, superseding any prior token of
// the same kind for that address. Deleting the old row and creating the
// new one is a deliberate two-step sequence, not a transaction; an
// interleaving leaves at most a duplicate row that the next Issue removes.
func (m *Manager) Issue(ctx context.Context, kind models.TokenKind, email string) (*models.Token, error) {
	existing, err := m.store.GetTokenByEmail(ctx, kind, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("looking up existing token: %w", err)
	}
	if existing != nil {
		if err := m.store.DeleteToken(ctx, kind, existing.ID); err != nil {
			return nil, fmt.Errorf("superseding token: %w", err)
		}
	}

	value := uuid.NewString()
	expiresAt := m.now().Add(Expiry)

	created, err := m.store.CreateToken(ctx, kind, email, value, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("creating token: %w", err)
	}
	return created, nil
}

// RedeemVerification redeems an email verification token: it marks the
// owner verified, persists the token's canonical email, and deletes the
// row. A second call with the same value fails with ErrTokenNotFound.
func (m *Manager) RedeemVerification(ctx context.Context, rawToken string) error {
	row, user, err := m.resolve(ctx, models.TokenKindVerification, rawToken)
	if err != nil {
		return err
	}

	if err := m.users.MarkEmailVerified(ctx, user.ID, row.Email, m.now()); err != nil {
		return fmt.Errorf("marking email verified: %w", err)
	}
	return m.store.DeleteToken(ctx, models.TokenKindVerification, row.ID)
}

// RedeemPasswordReset redeems a password reset token: it stores the new
// credential hash for the owner and deletes the row.
func (m *Manager) RedeemPasswordReset(ctx context.Context, rawToken, passwordHash string) error {
	row, user, err := m.resolve(ctx, models.TokenKindPasswordReset, rawToken)
	if err != nil {
		return err
	}

	if err := m.users.UpdateUserPassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return m.store.DeleteToken(ctx, models.TokenKindPasswordReset, row.ID)
}

// resolve looks up the row by value, checks expiry, and resolves the
// owning user. The owner must exist before any mutation happens.
func (m *Manager) resolve(ctx context.Context, kind models.TokenKind, rawToken string) (*models.Token, *models.User, error) {
	row, err := m.store.GetTokenByValue(ctx, kind, rawToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrTokenNotFound
		}
		return nil, nil, fmt.Errorf("looking up token: %w", err)
	}

	if row.Expired(m.now()) {
		return nil, nil, ErrTokenExpired
	}

	user, err := m.users.GetUserByEmail(ctx, row.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("looking up token owner: %w", err)
	}

	return row, user, nil
}
