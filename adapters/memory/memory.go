// Package memory is an in-process UserStorage for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gymcoach/gymauth/core"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[int64]*core.User
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

var _ core.UserStorage = (*Store)(nil)

func New() *Store {
	return &Store{
		byID:    make(map[int64]*core.User),
		byEmail: make(map[string]int64),
		nextID:  1,
		now:     time.Now,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return core.ErrUserExists
	}

	now := s.now().UTC()
	u.ID = s.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.nextID++

	stored := *u
	s.byID[u.ID] = &stored
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// SetActive flips the active flag of the user with the given email.
func (s *Store) SetActive(email string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return fmt.Errorf("failed to set active flag for %q: %w", email, core.ErrUserNotFound)
	}
	u := s.byID[id]
	u.IsActive = active
	u.UpdatedAt = s.now().UTC()
	return nil
}

// Len reports the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
