// Package memstore is an in-memory credential store used by tests and
// local development. It mirrors the semantics of the PostgreSQL store:
// uniqueness enforced at write time, write-time password hashing,
// ErrNotFound on missing records.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thanhldev/accountd"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]*accountd.Account
	hasher   accountd.Hasher
	now      func() time.Time
}

func New(hasher accountd.Hasher) *Store {
	return &Store{
		accounts: make(map[string]*accountd.Account),
		hasher:   hasher,
		now:      time.Now,
	}
}

func (s *Store) Create(ctx context.Context, in accountd.NewAccount) (*accountd.Account, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Username == in.Username {
			return nil, accountd.ErrDuplicateUsername
		}
	}
	for _, a := range s.accounts {
		if a.Email == in.Email {
			return nil, accountd.ErrDuplicateEmail
		}
	}

	now := s.now().UTC()
	account := &accountd.Account{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsVerified:   in.IsVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.accounts[account.ID] = account

	out := *account
	return &out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*accountd.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, accountd.ErrNotFound
	}
	out := *account
	return &out, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*accountd.Account, error) {
	return s.find(func(a *accountd.Account) bool { return a.Email == email })
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*accountd.Account, error) {
	return s.find(func(a *accountd.Account) bool { return a.Username == username })
}

func (s *Store) find(match func(*accountd.Account) bool) (*accountd.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if match(a) {
			out := *a
			return &out, nil
		}
	}
	return nil, accountd.ErrNotFound
}

func (s *Store) Update(ctx context.Context, id string, patch accountd.AccountPatch) (*accountd.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, accountd.ErrNotFound
	}

	if patch.Username != nil {
		for _, a := range s.accounts {
			if a.ID != id && a.Username == *patch.Username {
				return nil, accountd.ErrDuplicateUsername
			}
		}
		account.Username = *patch.Username
	}
	if patch.Email != nil {
		for _, a := range s.accounts {
			if a.ID != id && a.Email == *patch.Email {
				return nil, accountd.ErrDuplicateEmail
			}
		}
		account.Email = *patch.Email
	}
	if patch.Role != nil {
		account.Role = *patch.Role
	}
	if patch.AvatarURL != nil {
		account.AvatarURL = *patch.AvatarURL
	}
	if patch.IsVerified != nil {
		account.IsVerified = *patch.IsVerified
	}
	if patch.RefreshToken != nil {
		account.RefreshToken = *patch.RefreshToken
	}
	account.UpdatedAt = s.now().UTC()

	out := *account
	return &out, nil
}

func (s *Store) SetPassword(ctx context.Context, id string, plaintext string) error {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return accountd.ErrNotFound
	}
	account.PasswordHash = hash
	account.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) List(ctx context.Context) ([]accountd.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]accountd.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return accountd.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}
