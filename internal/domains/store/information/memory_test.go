package information

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

type InformationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInformationStoreSuite(t *testing.T) {
	suite.Run(t, new(InformationStoreSuite))
}

func (s *InformationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InformationStoreSuite) snapshot(domainID id.DomainID) *models.DomainInformation {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &models.DomainInformation{
		DomainID:         domainID,
		RequestID:        id.RequestID(uuid.New()),
		CreatorID:        id.UserID(uuid.New()),
		OrganizationName: "City of Springfield",
		FederalAgency:    "Non-Federal Agency",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s *InformationStoreSuite) TestOneSnapshotPerDomain() {
	domainID := id.DomainID(uuid.New())

	s.Require().NoError(s.store.Create(s.ctx, s.snapshot(domainID)))
	s.ErrorIs(s.store.Create(s.ctx, s.snapshot(domainID)), sentinel.ErrConflict)

	got, err := s.store.FindByDomain(s.ctx, domainID)
	s.Require().NoError(err)
	s.Equal("City of Springfield", got.OrganizationName)
}

func (s *InformationStoreSuite) TestDeleteByDomain() {
	domainID := id.DomainID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, s.snapshot(domainID)))

	s.NoError(s.store.DeleteByDomain(s.ctx, domainID))
	_, err := s.store.FindByDomain(s.ctx, domainID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.DeleteByDomain(s.ctx, domainID), "delete is idempotent")
}
