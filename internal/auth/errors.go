package auth

import "errors"

var (
	// ErrInvalidCredentials is the only error Validate returns for a bad token.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthenticationFailed covers both an unknown username and a wrong password.
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
)
