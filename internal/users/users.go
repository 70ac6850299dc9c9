// Package users holds the minimal user directory the request workflow
// needs: who is staff, who is restricted, and where to send mail.
package users

import (
	"context"
	"sync"
	"time"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// User is one account known to the registrar.
type User struct {
	ID    id.UserID `json:"id"`
	Email string    `json:"email"`
	// IsStaff marks analysts who may investigate requests.
	IsStaff bool `json:"is_staff"`
	// RestrictedAt is set when the account is barred from future
	// requests. Restriction is permanent; there is no unset path.
	RestrictedAt *time.Time `json:"restricted_at,omitempty"`
}

// IsRestricted reports whether the account is barred from new requests.
func (u *User) IsRestricted() bool { return u.RestrictedAt != nil }

// Directory exposes user lookups and the one mutation the workflow needs.
type Directory interface {
	Find(ctx context.Context, userID id.UserID) (*User, error)
	Restrict(ctx context.Context, userID id.UserID) error
}

// InMemory is the in-memory user directory used in tests and development.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.UserID]*User
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.UserID]*User)}
}

func (s *InMemory) Add(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.byID[u.ID] = &cp
}

func (s *InMemory) Find(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// Restrict permanently bars the account from future requests. Restricting
// an already-restricted account is a no-op, so a retried rejection with
// prejudice converges.
func (s *InMemory) Restrict(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if u.RestrictedAt == nil {
		t := requestcontext.Now(ctx)
		u.RestrictedAt = &t
	}
	return nil
}
