package service

import (
	"context"

	domainmodels "registrar/internal/domains/models"
	"registrar/internal/requests/models"
	id "registrar/pkg/domain"
)

// RequestStore is the persistence port for domain requests.
type RequestStore interface {
	Create(ctx context.Context, r *models.DomainRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error)
	ListByRequester(ctx context.Context, requesterID id.UserID) ([]*models.DomainRequest, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.DomainRequest, error)
	ExistsByApprovedDomain(ctx context.Context, domainID id.DomainID) (bool, error)
	Execute(ctx context.Context, requestID id.RequestID,
		validate func(*models.DomainRequest) error, mutate func(*models.DomainRequest)) (*models.DomainRequest, error)
}

// DomainProvisioner is the slice of the domain service the workflow needs.
// Approval creates the local row only; the registry call happens later
// inside the domain lifecycle, not at approval time.
type DomainProvisioner interface {
	CreateDomain(ctx context.Context, name string) (*domainmodels.Domain, error)
	Get(ctx context.Context, name string) (*domainmodels.Domain, error)
	DeleteLocal(ctx context.Context, d *domainmodels.Domain) error
}

// InformationStore holds the per-domain snapshot of approved request data.
// Written once at approval, removed when the approval is reversed.
type InformationStore interface {
	Create(ctx context.Context, info *domainmodels.DomainInformation) error
	FindByDomain(ctx context.Context, domainID id.DomainID) (*domainmodels.DomainInformation, error)
	DeleteByDomain(ctx context.Context, domainID id.DomainID) error
}
