// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/services/auth"
	"github.com/quizzlyhq/quizzly/internal/session"
)

// AuthHandlers contains handlers for the credential actions.
type AuthHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(authService *auth.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		auth:     authService,
		sessions: sessions,
	}
}

// Login handles POST /auth/login. A successful sign-in surfaces as a
// RedirectError from the action; every other non-Result error propagates
// into Echo's error handling.
func (h *AuthHandlers) Login(c echo.Context) error {
	var input auth.LoginInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusOK, &auth.Result{Error: "Invalid fields"})
	}

	signIn := h.auth.CredentialsSignIn(func(user *models.User) error {
		cookie, err := h.sessions.Create(user.ID, user.Email)
		if err != nil {
			return err
		}
		c.SetCookie(cookie)
		return nil
	})

	result, err := h.auth.Login(c.Request().Context(), input, signIn)
	if err != nil {
		var redirect *auth.RedirectError
		if errors.As(err, &redirect) {
			return c.Redirect(http.StatusSeeOther, redirect.Target)
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Register handles POST /auth/register.
func (h *AuthHandlers) Register(c echo.Context) error {
	var input auth.RegisterInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusOK, &auth.Result{Error: "Invalid fields 😞"})
	}

	result, err := h.auth.Register(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Reset handles POST /auth/reset.
func (h *AuthHandlers) Reset(c echo.Context) error {
	var input auth.ResetInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusOK, &auth.Result{Error: "Invalid email!"})
	}

	result, err := h.auth.Reset(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// NewPassword handles POST /auth/new-password?token=...
func (h *AuthHandlers) NewPassword(c echo.Context) error {
	var input auth.NewPasswordInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusOK, &auth.Result{Error: "Invalid Fields"})
	}

	result, err := h.auth.NewPassword(c.Request().Context(), input, c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// NewVerification handles POST /auth/new-verification?token=...
func (h *AuthHandlers) NewVerification(c echo.Context) error {
	result, err := h.auth.NewVerification(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Logout clears the session cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/")
}
