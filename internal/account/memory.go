package account

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded Store for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byID: make(map[int64]*Account)}
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	out := *acc
	return &out, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.byID {
		if acc.Email == email {
			out := *acc
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Create(_ context.Context, email, passwordHash, nickname string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &Account{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Nickname:     nickname,
		Role:         "USER",
		Active:       true,
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.byID[acc.ID] = acc
	out := *acc
	return &out, nil
}

func (s *MemoryStore) UpdatePasswordHash(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.byID[id]; ok {
		acc.PasswordHash = passwordHash
	}
	return nil
}

func (s *MemoryStore) TokenVersionByID(_ context.Context, id int64) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[id]
	if !ok {
		return 0, false, nil
	}
	return acc.TokenVersion, true, nil
}

func (s *MemoryStore) BumpTokenVersion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.byID[id]; ok {
		acc.TokenVersion++
	}
	return nil
}

// Deactivate marks an account inactive. Test helper mirroring withdrawal.
func (s *MemoryStore) Deactivate(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.byID[id]; ok {
		acc.Active = false
	}
}
