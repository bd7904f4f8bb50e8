package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/forumkit/auth-service/internal/account"
	"github.com/forumkit/auth-service/internal/audit"
	"github.com/forumkit/auth-service/internal/token"
)

// TokenPair is what a successful login or refresh hands to the transport:
// a signed access token and the raw refresh secret.
type TokenPair struct {
	AccessToken   string
	RefreshSecret string
}

// SessionService is the surface the HTTP layer talks to. It composes the
// codec, the rotation engine, and the version gate into the session
// lifecycle: issue, refresh, end, invalidate-all.
type SessionService struct {
	codec      *token.Codec
	tokens     token.Store
	rotator    *token.Rotator
	gate       *account.VersionGate
	accounts   account.Store
	refreshTTL time.Duration
	audit      *audit.Recorder
	log        *slog.Logger
}

func NewSessionService(
	codec *token.Codec,
	tokens token.Store,
	rotator *token.Rotator,
	gate *account.VersionGate,
	accounts account.Store,
	refreshTTL time.Duration,
	recorder *audit.Recorder,
	log *slog.Logger,
) *SessionService {
	return &SessionService{
		codec:      codec,
		tokens:     tokens,
		rotator:    rotator,
		gate:       gate,
		accounts:   accounts,
		refreshTTL: refreshTTL,
		audit:      recorder,
		log:        log,
	}
}

// Issue mints a fresh access/refresh pair for an account at login time.
func (s *SessionService) Issue(ctx context.Context, accountID int64) (*TokenPair, error) {
	version, ok, err := s.gate.CurrentVersion(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountInactive
	}

	access, err := s.codec.Issue(accountID, version)
	if err != nil {
		return nil, err
	}
	rawRefresh, _, err := s.tokens.Create(ctx, accountID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshSecret: rawRefresh}, nil
}

// Refresh exchanges a refresh secret for a new pair. Reuse of a consumed
// secret terminates every session of the resolved owner and is surfaced to
// the caller; unknown and expired secrets fail as plain invalid tokens.
func (s *SessionService) Refresh(ctx context.Context, rawRefresh string, meta audit.RequestMeta) (*TokenPair, error) {
	current, err := s.rotator.Validate(ctx, rawRefresh)
	if errors.Is(err, token.ErrReuseDetected) {
		s.respondToReuse(ctx, rawRefresh, meta)
		return nil, token.ErrReuseDetected
	}
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, token.ErrInvalidToken
	}

	acc, err := s.accounts.FindByID(ctx, current.OwnerID)
	if err != nil {
		return nil, err
	}
	if acc == nil || !acc.Active {
		return nil, token.ErrInvalidToken
	}

	newRefresh, _, err := s.rotator.Rotate(ctx, rawRefresh)
	if errors.Is(err, token.ErrReuseDetected) {
		// Lost the revoke race. Indistinguishable from a replayed token.
		s.respondToReuse(ctx, rawRefresh, meta)
		return nil, token.ErrReuseDetected
	}
	if err != nil {
		return nil, err
	}

	access, err := s.codec.Issue(acc.ID, acc.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshSecret: newRefresh}, nil
}

// End logs out a single session: the refresh token is retired and the version
// counter bumps so outstanding access tokens die with it.
func (s *SessionService) End(ctx context.Context, rawRefresh string, accountID int64) error {
	if err := s.rotator.Revoke(ctx, rawRefresh); err != nil {
		return err
	}
	if accountID > 0 {
		if err := s.gate.Bump(ctx, accountID); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateAll is the password-change / withdrawal path: bump the version
// counter, then drop every refresh token the account owns. The bump persists
// before the caller-visible operation completes.
func (s *SessionService) InvalidateAll(ctx context.Context, accountID int64, reason string) error {
	if err := s.gate.Bump(ctx, accountID); err != nil {
		return err
	}
	if err := s.tokens.DeleteAllForOwner(ctx, accountID); err != nil {
		return err
	}
	s.audit.SessionsInvalidated(ctx, accountID, reason)
	return nil
}

// respondToReuse terminates every session of the token's owner, when the
// owner is still resolvable from the revoked record.
func (s *SessionService) respondToReuse(ctx context.Context, rawRefresh string, meta audit.RequestMeta) {
	hash := token.HashSecret(rawRefresh)
	stolen, err := s.tokens.FindByHash(ctx, hash)
	if err != nil || stolen == nil {
		s.audit.TokenReuse(ctx, 0, hash, meta)
		return
	}
	s.audit.TokenReuse(ctx, stolen.OwnerID, hash, meta)
	if err := s.tokens.DeleteAllForOwner(ctx, stolen.OwnerID); err != nil {
		s.log.ErrorContext(ctx, "failed to terminate sessions after reuse",
			"owner_id", stolen.OwnerID, "error", err)
	}
}
