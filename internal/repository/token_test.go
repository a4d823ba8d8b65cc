// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/repository"
	"github.com/quizzlyhq/quizzly/internal/testutil"
)

func TestCreateAndGetToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	value := uuid.NewString()
	expiresAt := time.Now().Add(time.Hour)

	row, err := repo.CreateToken(ctx, models.TokenKindVerification, "alice@example.com", value, expiresAt)
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.Equal(t, "alice@example.com", row.Email)
	assert.Equal(t, value, row.Token)
	assert.WithinDuration(t, expiresAt, row.ExpiresAt, time.Second)

	byValue, err := repo.GetTokenByValue(ctx, models.TokenKindVerification, value)
	require.NoError(t, err)
	assert.Equal(t, row.ID, byValue.ID)

	byEmail, err := repo.GetTokenByEmail(ctx, models.TokenKindVerification, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, row.ID, byEmail.ID)
}

func TestTokenKindsUseSeparateTables(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	value := uuid.NewString()
	_, err := repo.CreateToken(ctx, models.TokenKindVerification, "alice@example.com", value, time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Invisible from the other kind's namespace.
	_, err = repo.GetTokenByValue(ctx, models.TokenKindPasswordReset, value)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetTokenByEmail(ctx, models.TokenKindPasswordReset, "alice@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	row, err := repo.CreateToken(ctx, models.TokenKindPasswordReset, "alice@example.com", uuid.NewString(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteToken(ctx, models.TokenKindPasswordReset, row.ID))

	_, err = repo.GetTokenByValue(ctx, models.TokenKindPasswordReset, row.Token)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting a missing row is not an error.
	assert.NoError(t, repo.DeleteToken(ctx, models.TokenKindPasswordReset, row.ID))
}

func TestUnknownTokenKind(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateToken(ctx, models.TokenKind("bogus"), "alice@example.com", uuid.NewString(), time.Now())
	assert.Error(t, err)
	_, err = repo.GetTokenByValue(ctx, models.TokenKind("bogus"), "x")
	assert.Error(t, err)
}
