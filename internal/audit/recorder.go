// Package audit records security-relevant events out of band from the request
// that triggered them. Raw secrets and full tokens never reach the log; only
// digest prefixes and ids do.
package audit

import (
	"context"
	"log/slog"
)

// RequestMeta carries the caller network metadata attached to security events.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type Recorder struct {
	log *slog.Logger
}

func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// TokenReuse records a replayed refresh token. This always fires when reuse is
// detected; it is the theft signal and is never swallowed.
func (r *Recorder) TokenReuse(ctx context.Context, ownerID int64, tokenHash string, meta RequestMeta) {
	r.log.WarnContext(ctx, "refresh token reuse detected",
		"owner_id", ownerID,
		"token_hash_prefix", hashPrefix(tokenHash),
		"ip", meta.IP,
		"user_agent", meta.UserAgent,
	)
}

// SessionsInvalidated records a mass invalidation (logout-all, password
// change, withdrawal, or reuse response).
func (r *Recorder) SessionsInvalidated(ctx context.Context, accountID int64, reason string) {
	r.log.InfoContext(ctx, "all sessions invalidated",
		"account_id", accountID,
		"reason", reason,
	)
}

func hashPrefix(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
