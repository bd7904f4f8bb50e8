package auth

import (
	"context"
	"log/slog"

	"github.com/forumkit/auth-service/internal/account"
	"github.com/forumkit/auth-service/internal/token"
)

// Identity is the authenticated caller attached to a request. A nil Identity
// means anonymous.
type Identity struct {
	AccountID int64
	Role      string
	Nickname  string
}

// Authenticator resolves a bearer token to an identity. Every failure —
// malformed token, bad signature, expired, version drift, missing or inactive
// account — degrades silently to anonymous. Whether anonymous is enough for
// the endpoint is the caller's concern.
type Authenticator struct {
	codec    *token.Codec
	gate     *account.VersionGate
	accounts account.Store
	log      *slog.Logger
}

func NewAuthenticator(codec *token.Codec, gate *account.VersionGate, accounts account.Store, log *slog.Logger) *Authenticator {
	return &Authenticator{codec: codec, gate: gate, accounts: accounts, log: log}
}

func (a *Authenticator) Authenticate(ctx context.Context, bearer string) *Identity {
	if bearer == "" {
		return nil
	}

	claims, err := a.codec.Verify(bearer)
	if err != nil {
		return nil
	}

	ok, err := a.gate.IsValid(ctx, claims.AccountID, claims.Version)
	if err != nil {
		a.log.ErrorContext(ctx, "version gate lookup failed", "account_id", claims.AccountID, "error", err)
		return nil
	}
	if !ok {
		a.log.DebugContext(ctx, "access token version mismatch", "account_id", claims.AccountID)
		return nil
	}

	acc, err := a.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		a.log.ErrorContext(ctx, "account lookup failed", "account_id", claims.AccountID, "error", err)
		return nil
	}
	if acc == nil || !acc.Active {
		return nil
	}

	return &Identity{AccountID: acc.ID, Role: acc.Role, Nickname: acc.Nickname}
}
