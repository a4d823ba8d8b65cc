// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// TokenKind selects one of the two token namespaces. Verification and
// password reset tokens share the same lifecycle rules but live in
// separate tables and never interact.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password-reset"
)

// Token is a single-use, expiring token owned by an email address.
// At most one live row exists per email per kind; issuing a new token
// supersedes (deletes) the previous one.
type Token struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its deadline at the given time.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
