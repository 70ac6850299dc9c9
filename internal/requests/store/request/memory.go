// Package request persists domain requests.
package request

import (
	"context"
	"sync"

	"registrar/internal/requests/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// InMemory is the in-memory request store used in tests and development.
// Like the domain store, Execute holds the mutex across both callbacks so a
// workflow guard and its status change are atomic.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.RequestID]*models.DomainRequest
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.RequestID]*models.DomainRequest)}
}

func (s *InMemory) Create(_ context.Context, r *models.DomainRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *r
	s.byID[r.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.DomainRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemory) ListByRequester(_ context.Context, requesterID id.UserID) ([]*models.DomainRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DomainRequest
	for _, r := range s.byID {
		if r.RequesterID == requesterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) ListByStatus(_ context.Context, status models.Status) ([]*models.DomainRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DomainRequest
	for _, r := range s.byID {
		if r.Status == status {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ExistsByApprovedDomain reports whether any request already claims the
// given domain. Enforced before relinking so one domain is never claimed by
// two approvals.
func (s *InMemory) ExistsByApprovedDomain(_ context.Context, domainID id.DomainID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byID {
		if r.ApprovedDomainID != nil && *r.ApprovedDomainID == domainID {
			return true, nil
		}
	}
	return false, nil
}

// Execute atomically validates and mutates one request.
func (s *InMemory) Execute(ctx context.Context, requestID id.RequestID,
	validate func(*models.DomainRequest) error, mutate func(*models.DomainRequest)) (*models.DomainRequest, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	cp := *r
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	cp.Version++
	cp.UpdatedAt = requestcontext.Now(ctx)

	s.byID[requestID] = &cp
	out := cp
	return &out, nil
}
