package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/forumkit/auth-service/internal/account"
	"github.com/forumkit/auth-service/internal/audit"
	"github.com/forumkit/auth-service/internal/token"
)

type testEnv struct {
	codec         *token.Codec
	tokens        *token.MemoryStore
	rotator       *token.Rotator
	accounts      *account.MemoryStore
	gate          *account.VersionGate
	sessions      *SessionService
	authenticator *Authenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec(token.CodecConfig{
		Secret: []byte("test-secret-key-0123456789abcdef"),
		Issuer: "forumkit-test",
		TTL:    30 * time.Minute,
	})
	tokens := token.NewMemoryStore()
	rotator := token.NewRotator(tokens, time.Hour)
	accounts := account.NewMemoryStore()
	gate := account.NewVersionGate(accounts)
	recorder := audit.NewRecorder(log)

	return &testEnv{
		codec:         codec,
		tokens:        tokens,
		rotator:       rotator,
		accounts:      accounts,
		gate:          gate,
		sessions:      NewSessionService(codec, tokens, rotator, gate, accounts, time.Hour, recorder, log),
		authenticator: NewAuthenticator(codec, gate, accounts, log),
	}
}

func (e *testEnv) createAccount(t *testing.T, email, password string) *account.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	acc, err := e.accounts.Create(context.Background(), email, string(hash), "tester")
	require.NoError(t, err)
	return acc
}
