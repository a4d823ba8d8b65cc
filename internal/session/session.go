// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session issues and verifies signed session cookies.
package session

import (
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no valid session")

// User is the identity stored in a session cookie.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Manager creates and parses session cookies using securecookie.
type Manager struct {
	codec      *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager. hashKey must be a 32-byte hex
// string; blockKey is optional and enables encryption when set.
func NewManager(hashKey, blockKey, cookieName string, maxAge int, secure bool) (*Manager, error) {
	hk, err := hex.DecodeString(hashKey)
	if err != nil || len(hk) != 32 {
		return nil, errors.New("session hash key must be a 32-byte hex string")
	}

	var bk []byte
	if blockKey != "" {
		bk, err = hex.DecodeString(blockKey)
		if err != nil || len(bk) != 32 {
			return nil, errors.New("session block key must be a 32-byte hex string")
		}
	}

	codec := securecookie.New(hk, bk)
	codec.MaxAge(maxAge)

	return &Manager{
		codec:      codec,
		cookieName: cookieName,
		maxAge:     maxAge,
		secure:     secure,
	}, nil
}

// Create issues a session cookie for the given user.
func (m *Manager) Create(userID int64, email string) (*http.Cookie, error) {
	value, err := m.codec.Encode(m.cookieName, &User{ID: userID, Email: email})
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   m.maxAge,
		Expires:  time.Now().Add(time.Duration(m.maxAge) * time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Parse extracts the session user from a request.
func (m *Manager) Parse(r *http.Request) (*User, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	var user User
	if err := m.codec.Decode(m.cookieName, cookie.Value, &user); err != nil {
		return nil, ErrNoSession
	}
	return &user, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
