// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizzlyhq/quizzly/internal/models"
	"github.com/quizzlyhq/quizzly/internal/ratelimit"
	"github.com/quizzlyhq/quizzly/internal/repository"
	"github.com/quizzlyhq/quizzly/internal/services/auth"
	"github.com/quizzlyhq/quizzly/internal/services/token"
	"github.com/quizzlyhq/quizzly/internal/testutil"
)

// captureMailer records sent mails instead of dialing SMTP.
type captureMailer struct {
	verifications []sentMail
	resets        []sentMail
	err           error
}

type sentMail struct {
	email string
	token string
}

func (m *captureMailer) SendVerification(_ context.Context, email, tok string) error {
	if m.err != nil {
		return m.err
	}
	m.verifications = append(m.verifications, sentMail{email: email, token: tok})
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, tok string) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, sentMail{email: email, token: tok})
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *repository.Repository, *captureMailer) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mailer := &captureMailer{}
	tokens := token.NewManager(repo, repo)
	svc := auth.NewService(repo, tokens, mailer, ratelimit.New())
	return svc, repo, mailer
}

// signInNever fails the test if the sign-in primitive is ever invoked.
func signInNever(t *testing.T) auth.SignInFunc {
	return func(_ context.Context, _, _ string) error {
		t.Fatal("sign-in must not be invoked")
		return nil
	}
}

func TestLoginInvalidFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, input := range []auth.LoginInput{
		{},
		{Email: "not-an-email", Password: "password123"},
		{Email: "alice@example.com"},
	} {
		result, err := svc.Login(ctx, input, signInNever(t))
		require.NoError(t, err)
		assert.Equal(t, "Invalid fields", result.Error)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Login(context.Background(), auth.LoginInput{
		Email:    "nobody@example.com",
		Password: "password123",
	}, signInNever(t))
	require.NoError(t, err)
	assert.Equal(t, "Email does not exisit", result.Error)
}

func TestLoginAccountWithoutPassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "")

	// Indistinguishable from an unknown address.
	result, err := svc.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	}, signInNever(t))
	require.NoError(t, err)
	assert.Equal(t, "Email does not exisit", result.Error)
}

func TestLoginUnverifiedResendsConfirmation(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "Alice", "alice@example.com", "password123")

	result, err := svc.Login(ctx, auth.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	}, signInNever(t))
	require.NoError(t, err)
	assert.Equal(t, "Confirmation email sent!", result.Success)

	require.Len(t, mailer.verifications, 1)
	assert.Equal(t, "alice@example.com", mailer.verifications[0].email)

	row, err := repo.GetTokenByEmail(ctx, models.TokenKindVerification, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, mailer.verifications[0].token, row.Token)
}

func TestLoginUnverifiedSupersedesPriorToken(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "Alice", "alice@example.com", "password123")

	input := auth.LoginInput{Email: "alice@example.com", Password: "password123"}
	_, err := svc.Login(ctx, input, signInNever(t))
	require.NoError(t, err)
	_, err = svc.Login(ctx, input, signInNever(t))
	require.NoError(t, err)

	require.Len(t, mailer.verifications, 2)
	assert.NotEqual(t, mailer.verifications[0].token, mailer.verifications[1].token)

	// Only the latest token exists.
	_, err = repo.GetTokenByValue(ctx, models.TokenKindVerification, mailer.verifications[0].token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetTokenByValue(ctx, models.TokenKindVerification, mailer.verifications[1].token)
	assert.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, repo, _ := newTestService(t)
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "password123")

	result, err := svc.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}, svc.CredentialsSignIn(nil))
	require.NoError(t, err)
	assert.Equal(t, "Invalid credentials", result.Error)
}

func TestLoginOtherAuthError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "password123")

	signIn := func(_ context.Context, _, _ string) error {
		return &auth.AuthError{Type: "AccessDenied"}
	}

	result, err := svc.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	}, signIn)
	require.NoError(t, err)
	assert.Equal(t, "Something went wrong", result.Error)
}

func TestLoginSuccessRedirects(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "password123")

	var signedIn *models.User
	signIn := svc.CredentialsSignIn(func(u *models.User) error {
		signedIn = u
		return nil
	})

	_, err := svc.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	}, signIn)

	var redirect *auth.RedirectError
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, "/discover", redirect.Target)
	require.NotNil(t, signedIn)
	assert.Equal(t, user.ID, signedIn.ID)
}

func TestLoginUnclassifiedErrorPropagates(t *testing.T) {
	svc, repo, _ := newTestService(t)
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "password123")

	boom := errors.New("session store unavailable")
	signIn := func(_ context.Context, _, _ string) error { return boom }

	result, err := svc.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	}, signIn)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
}

func TestLoginRateLimit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	input := auth.LoginInput{Email: "alice@example.com", Password: "password123"}
	for i := 0; i < ratelimit.MaxRequests; i++ {
		result, err := svc.Login(ctx, input, signInNever(t))
		require.NoError(t, err)
		require.NotEqual(t, "Too many requests. Please try again later.", result.Error)
	}

	result, err := svc.Login(ctx, input, signInNever(t))
	require.NoError(t, err)
	assert.Equal(t, "Too many requests. Please try again later.", result.Error)

	// Another address is unaffected.
	result, err = svc.Login(ctx, auth.LoginInput{
		Email:    "bob@example.com",
		Password: "password123",
	}, signInNever(t))
	require.NoError(t, err)
	assert.Equal(t, "Email does not exisit", result.Error)
}

func TestRegisterInvalidFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, input := range []auth.RegisterInput{
		{},
		{Name: "Alice", Email: "alice@example.com", Password: "short"},
		{Name: "Alice", Email: "alice@example.com", Password: "has a space"},
		{Name: "Alice", Email: "not-an-email", Password: "password123"},
		{Email: "alice@example.com", Password: "password123"},
	} {
		result, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "Invalid fields 😞", result.Error)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	testutil.NewTestUser(t, repo, "Alice", "alice@example.com", "password123")

	result, err := svc.Register(context.Background(), auth.RegisterInput{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "password456",
	})
	require.NoError(t, err)
	assert.Equal(t, "Email already taken 😞", result.Error)
}

func TestRegisterSuccess(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Confirmation email sent!", result.Success)

	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.False(t, user.IsVerified())
	require.True(t, user.HasPassword())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("password123")))

	require.Len(t, mailer.verifications, 1)
	assert.Equal(t, "alice@example.com", mailer.verifications[0].email)
}

func TestRegisterRateLimit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Invalid payloads are rejected before the limiter, so the counter
	// only moves for well-formed requests.
	for i := 0; i < ratelimit.MaxRequests; i++ {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Name:     "Alice",
			Email:    "ratelimit@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
	}

	result, err := svc.Register(ctx, auth.RegisterInput{
		Name:     "Alice",
		Email:    "ratelimit@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Too many requests. Please try again later.", result.Error)
}

func TestResetInvalidEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Reset(context.Background(), auth.ResetInput{Email: "not-an-email"})
	require.NoError(t, err)
	assert.Equal(t, "Invalid email!", result.Error)
}

func TestResetUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Reset(context.Background(), auth.ResetInput{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Email does not exist!", result.Error)
}

func TestResetSuccess(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "password123")

	result, err := svc.Reset(ctx, auth.ResetInput{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Reset email sent 📫", result.Success)

	require.Len(t, mailer.resets, 1)
	row, err := repo.GetTokenByEmail(ctx, models.TokenKindPasswordReset, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, row.Token, mailer.resets[0].token)
}

func TestNewPasswordRequiresToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.NewPassword(context.Background(), auth.NewPasswordInput{Password: "newpassword1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Token is required", result.Error)
}

func TestNewPasswordInvalidFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, password := range []string{"", "short", "has a space"} {
		result, err := svc.NewPassword(ctx, auth.NewPasswordInput{Password: password}, uuid.NewString())
		require.NoError(t, err)
		assert.Equal(t, "Invalid Fields", result.Error)
	}
}

func TestNewPasswordUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.NewPassword(context.Background(), auth.NewPasswordInput{Password: "newpassword1"}, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, "Invalid Token", result.Error)
}

func TestNewPasswordExpiredToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "password123")

	raw := uuid.NewString()
	_, err := repo.CreateToken(ctx, models.TokenKindPasswordReset, "alice@example.com", raw, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	result, err := svc.NewPassword(ctx, auth.NewPasswordInput{Password: "newpassword1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, "Token has expired", result.Error)

	// The expired row stays until superseded.
	_, err = repo.GetTokenByValue(ctx, models.TokenKindPasswordReset, raw)
	assert.NoError(t, err)
}

func TestNewPasswordOwnerMissing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	raw := uuid.NewString()
	_, err := repo.CreateToken(ctx, models.TokenKindPasswordReset, "ghost@example.com", raw, time.Now().Add(time.Hour))
	require.NoError(t, err)

	result, err := svc.NewPassword(ctx, auth.NewPasswordInput{Password: "newpassword1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, "Email not found", result.Error)
}

func TestNewPasswordSuccess(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()
	testutil.NewVerifiedTestUser(t, repo, "Alice", "alice@example.com", "oldpassword1")

	_, err := svc.Reset(ctx, auth.ResetInput{Email: "alice@example.com"})
	require.NoError(t, err)
	require.Len(t, mailer.resets, 1)
	raw := mailer.resets[0].token

	result, err := svc.NewPassword(ctx, auth.NewPasswordInput{Password: "newpassword1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully", result.Success)

	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("newpassword1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("oldpassword1")))

	// Single use.
	result, err = svc.NewPassword(ctx, auth.NewPasswordInput{Password: "anotherpass1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, "Invalid Token", result.Error)
}

func TestNewVerificationUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.NewVerification(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, "Token does not exisit 😣", result.Error)
}

func TestNewVerificationExpiredToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "Alice", "alice@example.com", "password123")

	raw := uuid.NewString()
	_, err := repo.CreateToken(ctx, models.TokenKindVerification, "alice@example.com", raw, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	result, err := svc.NewVerification(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "Token has expired 😣", result.Error)
}

func TestNewVerificationOwnerMissing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	raw := uuid.NewString()
	_, err := repo.CreateToken(ctx, models.TokenKindVerification, "ghost@example.com", raw, time.Now().Add(time.Hour))
	require.NoError(t, err)

	result, err := svc.NewVerification(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "User does not exisit 😬", result.Error)
}

func TestNewVerificationSuccess(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "Alice", "alice@example.com", "password123")

	// Obtain a token the way a user would: a login attempt on an
	// unverified account.
	_, err := svc.Login(ctx, auth.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	}, signInNever(t))
	require.NoError(t, err)
	require.Len(t, mailer.verifications, 1)
	raw := mailer.verifications[0].token

	result, err := svc.NewVerification(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "Email verified 🎉. Go to login to continue", result.Success)

	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified())

	// Single use.
	result, err = svc.NewVerification(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "Token does not exisit 😣", result.Error)
}
