package token

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted record of an issued refresh token. Only the
// digest of the secret is stored; Revoked flips false→true exactly once and
// never reverts.
type RefreshToken struct {
	ID        uuid.UUID
	TokenHash string
	OwnerID   int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
