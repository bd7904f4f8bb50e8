package token

import (
	"context"
	"time"
)

// Rotator implements single-use refresh token rotation over a Store.
//
// Token states, from the rotator's view: active → rotated | expired |
// explicitly revoked. All three are terminal. A revoked token presented again
// is the reuse-attack signal; an unknown or expired token is an ordinary
// failure and the two are deliberately indistinguishable to callers.
type Rotator struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewRotator(store Store, ttl time.Duration) *Rotator {
	return &Rotator{store: store, ttl: ttl, now: time.Now}
}

// Validate resolves a raw secret to its active record. It returns (nil, nil)
// for unknown or expired secrets and ErrReuseDetected for revoked ones.
func (r *Rotator) Validate(ctx context.Context, rawSecret string) (*RefreshToken, error) {
	if rawSecret == "" {
		return nil, nil
	}
	rec, err := r.store.FindByHash(ctx, HashSecret(rawSecret))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if rec.Revoked {
		return nil, ErrReuseDetected
	}
	if rec.ExpiresAt.Before(r.now()) {
		return nil, nil
	}
	return rec, nil
}

// Rotate exchanges a refresh secret for a new one. The old record must be
// provably revoked before the new secret is minted, so two valid tokens never
// coexist. Losing the revoke race fails exactly like a replayed token.
func (r *Rotator) Rotate(ctx context.Context, rawOldSecret string) (string, *RefreshToken, error) {
	if rawOldSecret == "" {
		return "", nil, ErrReuseDetected
	}
	hash := HashSecret(rawOldSecret)

	old, err := r.store.FindByHash(ctx, hash)
	if err != nil {
		return "", nil, err
	}
	if old == nil || old.Revoked {
		return "", nil, ErrReuseDetected
	}

	won, err := r.store.RevokeIfActive(ctx, hash)
	if err != nil {
		return "", nil, err
	}
	if !won {
		return "", nil, ErrReuseDetected
	}

	return r.store.Create(ctx, old.OwnerID, r.ttl)
}

// Revoke explicitly retires one session's refresh token. Idempotent; revoking
// an unknown or already-revoked secret is not an error.
func (r *Rotator) Revoke(ctx context.Context, rawSecret string) error {
	if rawSecret == "" {
		return nil
	}
	_, err := r.store.RevokeIfActive(ctx, HashSecret(rawSecret))
	return err
}

// SetNow overrides the clock. Test hook.
func (r *Rotator) SetNow(now func() time.Time) {
	r.now = now
}
