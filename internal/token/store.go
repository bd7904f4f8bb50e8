package token

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract for refresh tokens. RevokeIfActive is the
// concurrency-critical primitive: it must flip revoked in a single atomic
// conditional update, never a read-then-write.
type Store interface {
	Create(ctx context.Context, ownerID int64, ttl time.Duration) (string, *RefreshToken, error)
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	RevokeIfActive(ctx context.Context, hash string) (bool, error)
	DeleteAllForOwner(ctx context.Context, ownerID int64) error
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Create generates a fresh secret, persists its digest, and returns the raw
// secret alongside the stored record. This is the only point where the raw
// secret is observable.
func (s *PostgresStore) Create(ctx context.Context, ownerID int64, ttl time.Duration) (string, *RefreshToken, error) {
	raw, err := NewRefreshSecret()
	if err != nil {
		return "", nil, err
	}

	rec := &RefreshToken{
		ID:        uuid.New(),
		TokenHash: HashSecret(raw),
		OwnerID:   ownerID,
		ExpiresAt: s.now().Add(ttl),
		CreatedAt: s.now(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, token_hash, owner_id, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, false, $5)`,
		rec.ID, rec.TokenHash, rec.OwnerID, rec.ExpiresAt, rec.CreatedAt,
	)
	if err != nil {
		return "", nil, err
	}
	return raw, rec, nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	var rec RefreshToken
	err := s.db.QueryRowContext(ctx, `
		SELECT id, token_hash, owner_id, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = $1`,
		hash,
	).Scan(&rec.ID, &rec.TokenHash, &rec.OwnerID, &rec.ExpiresAt, &rec.Revoked, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RevokeIfActive flips revoked only if it is currently false and reports
// whether this caller won the flip. Concurrent rotations race through here;
// exactly one observes true.
func (s *PostgresStore) RevokeIfActive(ctx context.Context, hash string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1 AND revoked = false`,
		hash,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *PostgresStore) DeleteAllForOwner(ctx context.Context, ownerID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE owner_id = $1`, ownerID)
	return err
}

func (s *PostgresStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
