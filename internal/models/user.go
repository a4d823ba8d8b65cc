// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User is a registered account. PasswordHash is nil for accounts that only
// carry an external-provider identity; such accounts cannot sign in with
// credentials. EmailVerifiedAt is nil until the verification token for the
// address has been redeemed.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    *string    `db:"password_hash" json:"-"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the user can sign in with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsVerified reports whether the user's email address has been confirmed.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
