package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"registrar/internal/domains/models"
	"registrar/internal/domains/privacy"
	"registrar/internal/epp"
	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

func newDomainID() id.DomainID { return id.DomainID(uuid.New()) }

// discloseFor maps the privacy policy's decision onto the wire element,
// field by field. The two types stay separate on purpose: the policy knows
// nothing about EPP, and a new disclose flag has to be wired here by hand.
func discloseFor(c *models.PublicContact) epp.Disclose {
	settings := privacy.For(c)
	return epp.Disclose{
		Name:  settings.Name,
		Org:   settings.Org,
		Addr:  settings.Addr,
		Voice: settings.Voice,
		Fax:   settings.Fax,
		Email: settings.Email,
	}
}

func wireContact(c *models.PublicContact, authInfo string) epp.Contact {
	return epp.Contact{
		RegistryID:  c.RegistryID,
		Name:        c.Name,
		Org:         c.Org,
		Streets:     c.Streets,
		City:        c.City,
		Province:    c.Province,
		PostalCode:  c.PostalCode,
		CountryCode: c.CountryCode,
		Voice:       c.Voice,
		Fax:         c.Fax,
		Email:       c.Email,
		AuthInfo:    authInfo,
	}
}

// wireType maps a local contact role to its RFC 5731 association type.
// The security role rides on the tech slot; the local row keeps the real
// role.
func wireType(t models.ContactType) string {
	if t == models.ContactAdministrative {
		return epp.WireContactAdmin
	}
	return epp.WireContactTech
}

func missingDefaultTypes(existing []*models.PublicContact) []models.ContactType {
	present := make(map[models.ContactType]bool, len(existing))
	for _, c := range existing {
		present[c.Type] = true
	}
	var missing []models.ContactType
	for _, t := range models.DefaultableContactTypes {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// provisionAtRegistry creates the registry objects for a brand-new domain:
// the registrant contact, the domain itself, then the three default roles.
// Every step tolerates an already-exists answer so a retried provision after
// a timeout converges instead of failing.
func (s *Service) provisionAtRegistry(ctx context.Context, d *models.Domain) error {
	registrant, err := s.ensureLocalContact(ctx, d, models.ContactRegistrant)
	if err != nil {
		return err
	}
	if err := s.createRegistryContact(ctx, registrant); err != nil {
		return err
	}

	if err := s.registry.CreateDomain(ctx, d.Name, registrant.RegistryID); err != nil {
		return err
	}

	return s.createMissingDefaultContacts(ctx, d)
}

// createMissingDefaultContacts fills in absent admin, security, and tech
// roles with registry defaults and attaches them to the domain.
func (s *Service) createMissingDefaultContacts(ctx context.Context, d *models.Domain) error {
	existing, err := s.contacts.ListByDomain(ctx, d.ID)
	if err != nil {
		return err
	}
	for _, typ := range missingDefaultTypes(existing) {
		c := models.DefaultContact(d.ID, typ, requestcontext.Now(ctx))
		if err := s.contacts.Create(ctx, c); err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to store default contact")
		}
		if err := s.createRegistryContact(ctx, c); err != nil {
			return err
		}
		if err := s.registry.UpdateDomainContact(ctx, d.Name, c.RegistryID, wireType(typ), false); err != nil {
			if epp.IsObjectExists(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Service) ensureLocalContact(ctx context.Context, d *models.Domain, typ models.ContactType) (*models.PublicContact, error) {
	c, err := s.contacts.FindByDomainAndType(ctx, d.ID, typ)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	c = models.DefaultContact(d.ID, typ, requestcontext.Now(ctx))
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to store contact")
	}
	return c, nil
}

func (s *Service) createRegistryContact(ctx context.Context, c *models.PublicContact) error {
	authInfo, err := epp.GenerateAuthInfo()
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to generate auth info")
	}
	return s.registry.CreateContact(ctx, wireContact(c, authInfo), discloseFor(c))
}

// SetContact creates or replaces the contact in the given role and pushes
// the change to the registry with disclosure recomputed from current policy.
// The local row and the registry copy always change together.
func (s *Service) SetContact(ctx context.Context, domainName string, typ models.ContactType, update *models.PublicContact) (*models.PublicContact, error) {
	if !typ.Valid() {
		return nil, derrors.Newf(derrors.CodeInvalidInput, "invalid contact type %q", typ)
	}
	d, err := s.Get(ctx, domainName)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	existing, err := s.contacts.FindByDomainAndType(ctx, d.ID, typ)
	switch {
	case err == nil:
		// Keep identity; replace the postal and reachability fields.
		existing.Name = update.Name
		existing.Org = update.Org
		existing.Streets = update.Streets
		existing.City = update.City
		existing.Province = update.Province
		existing.PostalCode = update.PostalCode
		existing.CountryCode = update.CountryCode
		existing.Voice = update.Voice
		existing.Fax = update.Fax
		existing.Email = update.Email
		existing.UpdatedAt = now
		if err := s.contacts.Update(ctx, existing); err != nil {
			return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to update contact")
		}
		if err := s.registry.UpdateContact(ctx, wireContact(existing, ""), discloseFor(existing)); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, sentinel.ErrNotFound):
		c := update
		c.ID = id.ContactID(uuid.New())
		c.DomainID = d.ID
		c.RegistryID = models.NewRegistryContactID()
		c.Type = typ
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := s.contacts.Create(ctx, c); err != nil {
			return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to store contact")
		}
		if err := s.createRegistryContact(ctx, c); err != nil {
			return nil, err
		}
		if typ != models.ContactRegistrant {
			if err := s.registry.UpdateDomainContact(ctx, domainName, c.RegistryID, wireType(typ), false); err != nil && !epp.IsObjectExists(err) {
				return nil, err
			}
		}
		return c, nil

	default:
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load contact")
	}
}

// Contacts lists a domain's contacts.
func (s *Service) Contacts(ctx context.Context, domainName string) ([]*models.PublicContact, error) {
	d, err := s.Get(ctx, domainName)
	if err != nil {
		return nil, err
	}
	return s.contacts.ListByDomain(ctx, d.ID)
}
