// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth orchestrates the credential actions: login, register,
// password reset request and the two token redemption flows. Every action
// returns a Result with a short human-readable message; only unclassified
// failures (and the sign-in redirect signal) escape as errors.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/ratelimit"
	"github.com/quizzlyhq/quizzly/internal/repository"
	"github.com/quizzlyhq/quizzly/internal/services/token"
	"github.com/quizzlyhq/quizzly/internal/validate"
)

// Result is the outcome of an action. Exactly one field is set; the
// message text is the contract consumed by the UI layer.
type Result struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Mailer dispatches token emails. Failures are not retried here.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// SignInFunc is the sign-in primitive. A successful sign-in returns a
// RedirectError; credential failures return an AuthError.
type SignInFunc func(ctx context.Context, email, password string) error

// dummyHash is used for constant-time login to prevent timing attacks.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service wires the collaborators for the credential actions.
type Service struct {
	repo    *repository.Repository
	tokens  *token.Manager
	mailer  Mailer
	limiter *ratelimit.Limiter
}

// NewService creates an auth service.
func NewService(repo *repository.Repository, tokens *token.Manager, mailer Mailer, limiter *ratelimit.Limiter) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		limiter: limiter,
	}
}

// LoginInput is the login form payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the registration form payload. Passwords must be at
// least 8 characters and contain no spaces.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,excludesall=0x20"`
}

// ResetInput is the password reset request payload.
type ResetInput struct {
	Email string `json:"email" validate:"required,email"`
}

// NewPasswordInput is the reset confirmation payload.
type NewPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,excludesall=0x20"`
}

// Login authenticates a user. An unverified account short-circuits into a
// fresh verification mail before the password is ever compared, and an
// account without a stored password is indistinguishable from a missing
// one.
func (s *Service) Login(ctx context.Context, input LoginInput, signIn SignInFunc) (*Result, error) {
	if err := validate.Struct(input); err != nil {
		return &Result{Error: "Invalid fields"}, nil
	}

	if !s.limiter.Allow("login:" + input.Email) {
		slog.Warn("login_rate_limited", "email", input.Email)
		return &Result{Error: "Too many requests. Please try again later."}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Result{Error: "Email does not exisit"}, nil
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// Provider-only accounts hide behind the same message as unknown
	// addresses.
	if !user.HasPassword() {
		return &Result{Error: "Email does not exisit"}, nil
	}

	if !user.IsVerified() {
		tok, err := s.tokens.Issue(ctx, models.TokenKindVerification, user.Email)
		if err != nil {
			return nil, err
		}
		if err := s.mailer.SendVerification(ctx, tok.Email, tok.Token); err != nil {
			return nil, err
		}
		slog.Info("verification_resent", "email", user.Email)
		return &Result{Success: "Confirmation email sent!"}, nil
	}

	if err := signIn(ctx, input.Email, input.Password); err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			if authErr.Type == TypeCredentialsSignin {
				slog.Warn("login_failed", "email", input.Email, "reason", "invalid_credentials")
				return &Result{Error: "Invalid credentials"}, nil
			}
			slog.Warn("login_failed", "email", input.Email, "reason", authErr.Type)
			return &Result{Error: "Something went wrong"}, nil
		}
		// Everything else, including the sign-in redirect, passes through.
		return nil, err
	}

	return &Result{}, nil
}

// Register creates an account and mails the verification token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	if err := validate.Struct(input); err != nil {
		return &Result{Error: "Invalid fields 😞"}, nil
	}

	if !s.limiter.Allow("register:" + input.Email) {
		slog.Warn("register_rate_limited", "email", input.Email)
		return &Result{Error: "Too many requests. Please try again later."}, nil
	}

	_, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return &Result{Error: "Email already taken 😞"}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	hashStr := string(hash)

	user, err := s.repo.CreateUser(ctx, input.Name, input.Email, &hashStr)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	tok, err := s.tokens.Issue(ctx, models.TokenKindVerification, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendVerification(ctx, tok.Email, tok.Token); err != nil {
		return nil, err
	}

	slog.Info("register_success", "user_id", user.ID, "email", user.Email)
	return &Result{Success: "Confirmation email sent!"}, nil
}

// Reset issues a password reset token and mails it.
func (s *Service) Reset(ctx context.Context, input ResetInput) (*Result, error) {
	if err := validate.Struct(input); err != nil {
		return &Result{Error: "Invalid email!"}, nil
	}

	if !s.limiter.Allow("reset:" + input.Email) {
		slog.Warn("reset_rate_limited", "email", input.Email)
		return &Result{Error: "Too many requests. Please try again later."}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Result{Error: "Email does not exist!"}, nil
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	tok, err := s.tokens.Issue(ctx, models.TokenKindPasswordReset, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendPasswordReset(ctx, tok.Email, tok.Token); err != nil {
		return nil, err
	}

	slog.Info("reset_requested", "email", user.Email)
	return &Result{Success: "Reset email sent 📫"}, nil
}

// NewPassword redeems a password reset token and stores the new
// credential hash.
func (s *Service) NewPassword(ctx context.Context, input NewPasswordInput, rawToken string) (*Result, error) {
	if rawToken == "" {
		return &Result{Error: "Token is required"}, nil
	}

	if err := validate.Struct(input); err != nil {
		return &Result{Error: "Invalid Fields"}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	switch err := s.tokens.RedeemPasswordReset(ctx, rawToken, string(hash)); {
	case errors.Is(err, token.ErrTokenNotFound):
		return &Result{Error: "Invalid Token"}, nil
	case errors.Is(err, token.ErrTokenExpired):
		return &Result{Error: "Token has expired"}, nil
	case errors.Is(err, token.ErrUserNotFound):
		return &Result{Error: "Email not found"}, nil
	case err != nil:
		return nil, err
	}

	return &Result{Success: "Password updated successfully"}, nil
}

// NewVerification redeems an email verification token.
func (s *Service) NewVerification(ctx context.Context, rawToken string) (*Result, error) {
	switch err := s.tokens.RedeemVerification(ctx, rawToken); {
	case errors.Is(err, token.ErrTokenNotFound):
		return &Result{Error: "Token does not exisit 😣"}, nil
	case errors.Is(err, token.ErrTokenExpired):
		return &Result{Error: "Token has expired 😣"}, nil
	case errors.Is(err, token.ErrUserNotFound):
		return &Result{Error: "User does not exisit 😬"}, nil
	case err != nil:
		return nil, err
	}

	return &Result{Success: "Email verified 🎉. Go to login to continue"}, nil
}

// CredentialsSignIn returns the default sign-in primitive: it compares
// the password, invokes onSignedIn (session issuance) and signals success
// with a redirect to /discover.
func (s *Service) CredentialsSignIn(onSignedIn func(user *models.User) error) SignInFunc {
	return func(ctx context.Context, email, password string) error {
		user, err := s.repo.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Constant-time: always perform a bcrypt comparison.
				_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
				return &AuthError{Type: TypeCredentialsSignin}
			}
			return err
		}

		if !user.HasPassword() {
			return &AuthError{Type: TypeCredentialsSignin}
		}

		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
			return &AuthError{Type: TypeCredentialsSignin}
		}

		if onSignedIn != nil {
			if err := onSignedIn(user); err != nil {
				return err
			}
		}

		slog.Info("login_success", "user_id", user.ID, "email", email)
		return &RedirectError{Target: "/discover"}
	}
}
