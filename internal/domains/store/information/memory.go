// Package information persists per-domain approval snapshots.
package information

import (
	"context"
	"sync"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// InMemory keeps one snapshot per domain.
type InMemory struct {
	mu       sync.RWMutex
	byDomain map[id.DomainID]*models.DomainInformation
}

func NewInMemory() *InMemory {
	return &InMemory{byDomain: make(map[id.DomainID]*models.DomainInformation)}
}

func (s *InMemory) Create(_ context.Context, info *models.DomainInformation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDomain[info.DomainID]; exists {
		return sentinel.ErrConflict
	}
	cp := *info
	s.byDomain[info.DomainID] = &cp
	return nil
}

func (s *InMemory) FindByDomain(_ context.Context, domainID id.DomainID) (*models.DomainInformation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.byDomain[domainID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *info
	return &cp, nil
}

func (s *InMemory) DeleteByDomain(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byDomain, domainID)
	return nil
}
