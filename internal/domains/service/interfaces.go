package service

import (
	"context"
	"time"

	"registrar/internal/domains/models"
	"registrar/internal/epp"
	id "registrar/pkg/domain"
)

// RegistryClient is the consumer-side port for the EPP client. The state
// machine depends on this interface so tests can substitute a spy without
// touching a real session.
type RegistryClient interface {
	CreateDomain(ctx context.Context, name, registrantID string) error
	DeleteDomain(ctx context.Context, name string) error
	UpdateDomainHosts(ctx context.Context, name string, add, remove []string) (int, error)
	PlaceClientHold(ctx context.Context, name string) error
	RemoveClientHold(ctx context.Context, name string) error
	IsDomainAvailable(ctx context.Context, name string) (bool, error)
	InfoDomain(ctx context.Context, name string) (*epp.DomainInfo, error)
	DomainExists(ctx context.Context, name string) (bool, error)
	IsPendingDelete(ctx context.Context, name string) (bool, error)
	RenewDomain(ctx context.Context, name string, curExpDate time.Time, years int) (time.Time, error)

	CreateContact(ctx context.Context, contact epp.Contact, disclose epp.Disclose) error
	UpdateContact(ctx context.Context, contact epp.Contact, disclose epp.Disclose) error
	UpdateDomainContact(ctx context.Context, name, registryID, wireType string, remove bool) error

	CreateHost(ctx context.Context, host epp.Host) (int, error)
	DeleteHost(ctx context.Context, name string) error
	FetchHosts(ctx context.Context, domainName string) ([]epp.Host, error)
}

// DomainStore is the persistence port for domain rows. Execute holds the
// row lock (mutex or SELECT FOR UPDATE) across both callbacks.
type DomainStore interface {
	Create(ctx context.Context, d *models.Domain) error
	FindByName(ctx context.Context, name string) (*models.Domain, error)
	FindByID(ctx context.Context, domainID id.DomainID) (*models.Domain, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Execute(ctx context.Context, name string,
		validate func(*models.Domain) error, mutate func(*models.Domain)) (*models.Domain, error)
	Delete(ctx context.Context, domainID id.DomainID) error
}

// ContactStore is the persistence port for public contacts.
type ContactStore interface {
	Create(ctx context.Context, c *models.PublicContact) error
	Update(ctx context.Context, c *models.PublicContact) error
	FindByDomainAndType(ctx context.Context, domainID id.DomainID, typ models.ContactType) (*models.PublicContact, error)
	ListByDomain(ctx context.Context, domainID id.DomainID) ([]*models.PublicContact, error)
	DeleteByDomain(ctx context.Context, domainID id.DomainID) error
}
