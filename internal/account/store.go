package account

import (
	"context"
	"database/sql"
	"errors"
)

// Store is the account persistence contract consumed by the auth core.
// BumpTokenVersion must be an atomic increment at the storage layer so that
// concurrent bumps (logout racing a password change) both apply.
type Store interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, email, passwordHash, nickname string) (*Account, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	TokenVersionByID(ctx context.Context, id int64) (int, bool, error)
	BumpTokenVersion(ctx context.Context, id int64) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, email, password_hash, nickname, role, token_version, active, created_at`

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM members WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM members WHERE email = $1`, email)
	return scanAccount(row)
}

func (s *PostgresStore) Create(ctx context.Context, email, passwordHash, nickname string) (*Account, error) {
	acc := &Account{
		Email:        email,
		PasswordHash: passwordHash,
		Nickname:     nickname,
		Role:         "USER",
		Active:       true,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO members (email, password_hash, nickname)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		email, passwordHash, nickname,
	).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE members SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	return err
}

func (s *PostgresStore) TokenVersionByID(ctx context.Context, id int64) (int, bool, error) {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT token_version FROM members WHERE id = $1`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, true, nil
}

// BumpTokenVersion increments in a single statement; the database serializes
// concurrent increments so none are lost.
func (s *PostgresStore) BumpTokenVersion(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE members SET token_version = token_version + 1 WHERE id = $1`, id)
	return err
}

func scanAccount(row *sql.Row) (*Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Nickname,
		&acc.Role, &acc.TokenVersion, &acc.Active, &acc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
