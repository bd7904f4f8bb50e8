package token

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded Store used by tests and local development.
// Its semantics mirror PostgresStore exactly, including the atomic
// revoke-if-active flip.
type MemoryStore struct {
	mu      sync.Mutex
	byHash  map[string]*RefreshToken
	nowFunc func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byHash:  make(map[string]*RefreshToken),
		nowFunc: time.Now,
	}
}

// SetNow overrides the clock. Test hook.
func (s *MemoryStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFunc = now
}

func (s *MemoryStore) Create(_ context.Context, ownerID int64, ttl time.Duration) (string, *RefreshToken, error) {
	raw, err := NewRefreshSecret()
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &RefreshToken{
		ID:        uuid.New(),
		TokenHash: HashSecret(raw),
		OwnerID:   ownerID,
		ExpiresAt: s.nowFunc().Add(ttl),
		CreatedAt: s.nowFunc(),
	}
	s.byHash[rec.TokenHash] = rec
	out := *rec
	return raw, &out, nil
}

func (s *MemoryStore) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byHash[hash]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (s *MemoryStore) RevokeIfActive(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byHash[hash]
	if !ok || rec.Revoked {
		return false, nil
	}
	rec.Revoked = true
	return true, nil
}

func (s *MemoryStore) DeleteAllForOwner(_ context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, rec := range s.byHash {
		if rec.OwnerID == ownerID {
			delete(s.byHash, hash)
		}
	}
	return nil
}

func (s *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for hash, rec := range s.byHash {
		if rec.ExpiresAt.Before(now) {
			delete(s.byHash, hash)
			count++
		}
	}
	return count, nil
}

// ActiveCountForOwner reports non-revoked, non-expired records. Test helper.
func (s *MemoryStore) ActiveCountForOwner(ownerID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.byHash {
		if rec.OwnerID == ownerID && !rec.Revoked && rec.ExpiresAt.After(s.nowFunc()) {
			count++
		}
	}
	return count
}
