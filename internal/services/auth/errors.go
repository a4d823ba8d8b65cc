// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

// AuthError is a named failure from the sign-in primitive. Actions map
// known types to user-facing messages; anything that is not an AuthError
// propagates to the caller unchanged.
type AuthError struct {
	Type string
}

// TypeCredentialsSignin marks a password mismatch or unknown account.
const TypeCredentialsSignin = "CredentialsSignin"

func (e *AuthError) Error() string {
	return "auth error: " + e.Type
}

// RedirectError is a control-flow signal, not a failure: a successful
// sign-in surfaces as a redirect that must pass through every error
// mapping layer untouched. Handlers translate it into an HTTP redirect.
type RedirectError struct {
	Target string
}

func (e *RedirectError) Error() string {
	return "redirect to " + e.Target
}
