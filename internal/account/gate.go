package account

import "context"

// VersionGate honors an access token only while its embedded version stamp
// equals the account's current counter. Bumping the counter invalidates every
// previously issued access token for that account at once.
type VersionGate struct {
	store Store
}

func NewVersionGate(store Store) *VersionGate {
	return &VersionGate{store: store}
}

// Bump increments the counter by exactly one. The write is persisted before
// the caller-visible operation (logout, password change, withdrawal) returns.
func (g *VersionGate) Bump(ctx context.Context, accountID int64) error {
	return g.store.BumpTokenVersion(ctx, accountID)
}

// CurrentVersion returns the counter, with ok=false when the account no
// longer exists.
func (g *VersionGate) CurrentVersion(ctx context.Context, accountID int64) (int, bool, error) {
	return g.store.TokenVersionByID(ctx, accountID)
}

// IsValid requires an exact match. Any drift, including a second concurrent
// bump, invalidates the presented version.
func (g *VersionGate) IsValid(ctx context.Context, accountID int64, presented int) (bool, error) {
	if presented < 0 {
		return false, nil
	}
	current, ok, err := g.store.TokenVersionByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return current == presented, nil
}
