package contact

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type ContactStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestContactStoreSuite(t *testing.T) {
	suite.Run(t, new(ContactStoreSuite))
}

func (s *ContactStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ContactStoreSuite) TestOneContactPerRole() {
	domainID := id.DomainID(uuid.New())
	c := models.DefaultContact(domainID, models.ContactSecurity, time.Now())

	s.Require().NoError(s.store.Create(s.ctx, c))
	s.ErrorIs(s.store.Create(s.ctx, models.DefaultContact(domainID, models.ContactSecurity, time.Now())),
		sentinel.ErrConflict)

	// A different role on the same domain is fine.
	s.NoError(s.store.Create(s.ctx, models.DefaultContact(domainID, models.ContactTechnical, time.Now())))
}

func (s *ContactStoreSuite) TestFindAndList() {
	domainID := id.DomainID(uuid.New())
	for _, typ := range models.DefaultableContactTypes {
		s.Require().NoError(s.store.Create(s.ctx, models.DefaultContact(domainID, typ, time.Now())))
	}

	found, err := s.store.FindByDomainAndType(s.ctx, domainID, models.ContactSecurity)
	s.Require().NoError(err)
	s.Equal(models.ContactSecurity, found.Type)

	all, err := s.store.ListByDomain(s.ctx, domainID)
	s.Require().NoError(err)
	s.Len(all, 3)

	_, err = s.store.FindByDomainAndType(s.ctx, domainID, models.ContactRegistrant)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ContactStoreSuite) TestUpdate() {
	domainID := id.DomainID(uuid.New())
	c := models.DefaultContact(domainID, models.ContactSecurity, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, c))

	c.Email = "soc@example.gov"
	s.Require().NoError(s.store.Update(s.ctx, c))

	found, err := s.store.FindByDomainAndType(s.ctx, domainID, models.ContactSecurity)
	s.Require().NoError(err)
	s.Equal("soc@example.gov", found.Email)

	missing := models.DefaultContact(id.DomainID(uuid.New()), models.ContactSecurity, time.Now())
	s.ErrorIs(s.store.Update(s.ctx, missing), sentinel.ErrNotFound)
}

func (s *ContactStoreSuite) TestDeleteByDomain() {
	domainID := id.DomainID(uuid.New())
	for _, typ := range models.DefaultableContactTypes {
		s.Require().NoError(s.store.Create(s.ctx, models.DefaultContact(domainID, typ, time.Now())))
	}

	s.Require().NoError(s.store.DeleteByDomain(s.ctx, domainID))
	all, err := s.store.ListByDomain(s.ctx, domainID)
	s.Require().NoError(err)
	s.Empty(all)
}
