package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/auth-service/internal/audit"
	"github.com/forumkit/auth-service/internal/token"
)

func TestSessionIssueAndRefresh(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	acc := env.createAccount(t, "a@b.c", "password1")

	pair, err := env.sessions.Issue(ctx, acc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshSecret)

	next, err := env.sessions.Refresh(ctx, pair.RefreshSecret, audit.RequestMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)
	assert.NotEqual(t, pair.RefreshSecret, next.RefreshSecret)

	claims, err := env.codec.Verify(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
}

func TestSessionIssueUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.Issue(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestSessionRefreshReuseTerminatesAllSessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	acc := env.createAccount(t, "a@b.c", "password1")

	first, err := env.sessions.Issue(ctx, acc.ID)
	require.NoError(t, err)
	second, err := env.sessions.Issue(ctx, acc.ID)
	require.NoError(t, err)

	// Consume the first refresh token, then replay it.
	rotated, err := env.sessions.Refresh(ctx, first.RefreshSecret, audit.RequestMeta{})
	require.NoError(t, err)

	_, err = env.sessions.Refresh(ctx, first.RefreshSecret, audit.RequestMeta{IP: "10.0.0.1"})
	assert.ErrorIs(t, err, token.ErrReuseDetected)

	// Every session of the owner is gone, including untouched ones.
	assert.Equal(t, 0, env.tokens.ActiveCountForOwner(acc.ID))
	_, err = env.sessions.Refresh(ctx, second.RefreshSecret, audit.RequestMeta{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = env.sessions.Refresh(ctx, rotated.RefreshSecret, audit.RequestMeta{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestSessionRefreshExpiredIsInvalidNotReuse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	acc := env.createAccount(t, "a@b.c", "password1")

	raw, _, err := env.tokens.Create(ctx, acc.ID, time.Millisecond)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = env.sessions.Refresh(ctx, raw, audit.RequestMeta{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	assert.NotErrorIs(t, err, token.ErrReuseDetected)
}

func TestSessionRefreshUnknownIsInvalid(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.Refresh(context.Background(), "never-issued", audit.RequestMeta{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestSessionEndRevokesAndBumps(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	acc := env.createAccount(t, "a@b.c", "password1")

	pair, err := env.sessions.Issue(ctx, acc.ID)
	require.NoError(t, err)

	require.NoError(t, env.sessions.End(ctx, pair.RefreshSecret, acc.ID))

	// Refresh token consumed; replaying it is now reuse.
	_, err = env.sessions.Refresh(ctx, pair.RefreshSecret, audit.RequestMeta{})
	assert.ErrorIs(t, err, token.ErrReuseDetected)

	version, ok, err := env.gate.CurrentVersion(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, version)
}

func TestSessionInvalidateAllBumpsAndDeletes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	acc := env.createAccount(t, "a@b.c", "password1")

	pair, err := env.sessions.Issue(ctx, acc.ID)
	require.NoError(t, err)

	require.NoError(t, env.sessions.InvalidateAll(ctx, acc.ID, "withdrawal"))

	assert.Equal(t, 0, env.tokens.ActiveCountForOwner(acc.ID))
	_, err = env.sessions.Refresh(ctx, pair.RefreshSecret, audit.RequestMeta{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	version, ok, err := env.gate.CurrentVersion(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, version)
}
