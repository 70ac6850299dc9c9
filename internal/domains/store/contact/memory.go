package contact

import (
	"context"
	"sync"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

type roleKey struct {
	domainID id.DomainID
	typ      models.ContactType
}

// InMemory stores public contacts keyed by (domain, role); each domain owns
// at most one contact per role.
type InMemory struct {
	mu       sync.RWMutex
	contacts map[roleKey]*models.PublicContact
}

func NewInMemory() *InMemory {
	return &InMemory{contacts: make(map[roleKey]*models.PublicContact)}
}

func (s *InMemory) Create(_ context.Context, c *models.PublicContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := roleKey{domainID: c.DomainID, typ: c.Type}
	if _, exists := s.contacts[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *c
	s.contacts[key] = &cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, c *models.PublicContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := roleKey{domainID: c.DomainID, typ: c.Type}
	if _, exists := s.contacts[key]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *c
	cp.UpdatedAt = requestcontext.Now(ctx)
	s.contacts[key] = &cp
	return nil
}

func (s *InMemory) FindByDomainAndType(_ context.Context, domainID id.DomainID, typ models.ContactType) (*models.PublicContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[roleKey{domainID: domainID, typ: typ}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) ListByDomain(_ context.Context, domainID id.DomainID) ([]*models.PublicContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.PublicContact
	for key, c := range s.contacts {
		if key.domainID == domainID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) DeleteByDomain(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.contacts {
		if key.domainID == domainID {
			delete(s.contacts, key)
		}
	}
	return nil
}
