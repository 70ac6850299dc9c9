package domain

import (
	"context"
	"strings"
	"sync"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// InMemory is the in-memory domain store used in tests and development.
// The mutex is held across Execute's validate and mutate callbacks, so a
// transition's guard check and its effect are atomic with respect to other
// transitions on the same domain.
type InMemory struct {
	mu     sync.RWMutex
	byName map[string]*models.Domain
}

func NewInMemory() *InMemory {
	return &InMemory{byName: make(map[string]*models.Domain)}
}

func (s *InMemory) Create(_ context.Context, d *models.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(d.Name)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *d
	s.byName[key] = &cp
	return nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemory) FindByID(_ context.Context, domainID id.DomainID) (*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.byName {
		if d.ID == domainID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byName[strings.ToLower(name)]
	return ok, nil
}

// Execute atomically validates and mutates one domain. The mutate callback
// runs only if validate returns nil; the stored row's version is bumped on
// every mutation.
func (s *InMemory) Execute(ctx context.Context, name string,
	validate func(*models.Domain) error, mutate func(*models.Domain)) (*models.Domain, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	cp := *d
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	cp.Version++
	cp.UpdatedAt = requestcontext.Now(ctx)

	s.byName[strings.ToLower(name)] = &cp
	out := cp
	return &out, nil
}

func (s *InMemory) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, d := range s.byName {
		if d.ID == domainID {
			delete(s.byName, key)
			return nil
		}
	}
	return sentinel.ErrNotFound
}
