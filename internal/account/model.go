package account

import "time"

// Account is the member record the auth core reads. TokenVersion is the
// per-account invalidation counter: it starts at 0 and only ever increments.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Nickname     string
	Role         string
	TokenVersion int
	Active       bool
	CreatedAt    time.Time
}
