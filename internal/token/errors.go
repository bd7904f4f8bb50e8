package token

import "errors"

var (
	// ErrInvalidToken covers every structural, signature, issuer, and expiry
	// violation of an access token. Callers must not surface the sub-reason.
	ErrInvalidToken = errors.New("invalid token")

	// ErrReuseDetected means a revoked refresh token was presented again, or a
	// rotation lost the revoke race. Both prove the secret was already
	// consumed and are handled identically.
	ErrReuseDetected = errors.New("refresh token reuse detected")
)
