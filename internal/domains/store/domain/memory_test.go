package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type DomainStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestDomainStoreSuite(t *testing.T) {
	suite.Run(t, new(DomainStoreSuite))
}

func (s *DomainStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *DomainStoreSuite) newDomain(name string) *models.Domain {
	d, err := models.NewDomain(id.DomainID(uuid.New()), name, time.Now())
	s.Require().NoError(err)
	return d
}

func (s *DomainStoreSuite) TestCreateAndLookups() {
	s.Run("creates and finds by name", func() {
		d := s.newDomain("example.gov")
		s.Require().NoError(s.store.Create(s.ctx, d))

		found, err := s.store.FindByName(s.ctx, "example.gov")
		s.Require().NoError(err)
		s.Equal(d.ID, found.ID)
		s.Equal(models.StateUnknown, found.State)
	})

	s.Run("lookup is case-insensitive", func() {
		found, err := s.store.FindByName(s.ctx, "EXAMPLE.gov")
		s.Require().NoError(err)
		s.Equal("example.gov", found.Name)
	})

	s.Run("duplicate name conflicts", func() {
		err := s.store.Create(s.ctx, s.newDomain("example.gov"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("missing name is not found", func() {
		_, err := s.store.FindByName(s.ctx, "nope.gov")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DomainStoreSuite) TestExecute() {
	d := s.newDomain("transition.gov")
	s.Require().NoError(s.store.Create(s.ctx, d))

	s.Run("validate failure leaves the row untouched", func() {
		sentinelErr := errors.New("guard failed")
		_, err := s.store.Execute(s.ctx, "transition.gov",
			func(*models.Domain) error { return sentinelErr },
			func(dom *models.Domain) { dom.State = models.StateReady })
		s.ErrorIs(err, sentinelErr)

		found, err := s.store.FindByName(s.ctx, "transition.gov")
		s.Require().NoError(err)
		s.Equal(models.StateUnknown, found.State)
		s.Equal(0, found.Version)
	})

	s.Run("mutation bumps version", func() {
		updated, err := s.store.Execute(s.ctx, "transition.gov",
			func(*models.Domain) error { return nil },
			func(dom *models.Domain) { dom.State = models.StateDNSNeeded })
		s.Require().NoError(err)
		s.Equal(models.StateDNSNeeded, updated.State)
		s.Equal(1, updated.Version)
	})

	s.Run("unknown domain is not found", func() {
		_, err := s.store.Execute(s.ctx, "missing.gov",
			func(*models.Domain) error { return nil },
			func(*models.Domain) {})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DomainStoreSuite) TestDelete() {
	d := s.newDomain("gone.gov")
	s.Require().NoError(s.store.Create(s.ctx, d))

	s.Require().NoError(s.store.Delete(s.ctx, d.ID))
	_, err := s.store.FindByName(s.ctx, "gone.gov")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(s.ctx, d.ID), sentinel.ErrNotFound)
}
