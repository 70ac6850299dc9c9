package roles

import (
	"context"
	"sync"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Store persists role grants.
type Store interface {
	Grant(ctx context.Context, userID id.UserID, domainID id.DomainID, role Role) (*UserDomainRole, error)
	ListByDomain(ctx context.Context, domainID id.DomainID) ([]*UserDomainRole, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*UserDomainRole, error)
	HasRole(ctx context.Context, userID id.UserID, domainID id.DomainID, role Role) (bool, error)
	RevokeByDomain(ctx context.Context, domainID id.DomainID) error
}

type grantKey struct {
	userID   id.UserID
	domainID id.DomainID
	role     Role
}

// InMemory is the in-memory role store used in tests and development.
type InMemory struct {
	mu      sync.RWMutex
	byGrant map[grantKey]*UserDomainRole
}

func NewInMemory() *InMemory {
	return &InMemory{byGrant: make(map[grantKey]*UserDomainRole)}
}

// Grant records a role grant. Granting an already-held role returns a
// conflict so approval can assert it created exactly one grant.
func (s *InMemory) Grant(ctx context.Context, userID id.UserID, domainID id.DomainID, role Role) (*UserDomainRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{userID: userID, domainID: domainID, role: role}
	if _, exists := s.byGrant[key]; exists {
		return nil, sentinel.ErrConflict
	}
	grant := &UserDomainRole{
		ID:        id.RoleID(uuid.New()),
		UserID:    userID,
		DomainID:  domainID,
		Role:      role,
		CreatedAt: requestcontext.Now(ctx),
	}
	s.byGrant[key] = grant
	cp := *grant
	return &cp, nil
}

func (s *InMemory) ListByDomain(_ context.Context, domainID id.DomainID) ([]*UserDomainRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*UserDomainRole
	for _, g := range s.byGrant {
		if g.DomainID == domainID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*UserDomainRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*UserDomainRole
	for _, g := range s.byGrant {
		if g.UserID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) HasRole(_ context.Context, userID id.UserID, domainID id.DomainID, role Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byGrant[grantKey{userID: userID, domainID: domainID, role: role}]
	return ok, nil
}

// RevokeByDomain drops every grant on a domain, used when approval is
// reversed and the just-created domain goes away.
func (s *InMemory) RevokeByDomain(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, g := range s.byGrant {
		if g.DomainID == domainID {
			delete(s.byGrant, key)
		}
	}
	return nil
}
