package auth

import "errors"

var (
	// ErrInvalidCredentials is returned by login when the email or password
	// does not match. The two cases are never distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive covers a missing or deactivated account. The request
	// pipeline treats it exactly like an invalid token.
	ErrAccountInactive = errors.New("account inactive or missing")
)
