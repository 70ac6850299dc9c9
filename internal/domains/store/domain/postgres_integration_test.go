//go:build integration

package domain

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
	"registrar/pkg/testutil/containers"
)

type PostgresDomainStoreSuite struct {
	suite.Suite

	ctx   context.Context
	now   time.Time
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresDomainStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresDomainStoreSuite))
}

func (s *PostgresDomainStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Apply(s.T(), Schema)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresDomainStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	_, err := s.pg.DB.Exec(`TRUNCATE domains CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresDomainStoreSuite) newDomain(name string) *models.Domain {
	d, err := models.NewDomain(id.DomainID(uuid.New()), name, s.now)
	s.Require().NoError(err)
	return d
}

func (s *PostgresDomainStoreSuite) TestCreateAndFind() {
	d := s.newDomain("pgtest.gov")
	s.Require().NoError(s.store.Create(s.ctx, d))

	found, err := s.store.FindByName(s.ctx, "PGTEST.gov")
	s.Require().NoError(err)
	s.Equal(d.ID, found.ID)
	s.Equal(models.StateUnknown, found.State)

	byID, err := s.store.FindByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal("pgtest.gov", byID.Name)
}

func (s *PostgresDomainStoreSuite) TestUniqueNameConflict() {
	s.Require().NoError(s.store.Create(s.ctx, s.newDomain("taken.gov")))
	s.ErrorIs(s.store.Create(s.ctx, s.newDomain("taken.gov")), sentinel.ErrConflict)
}

func (s *PostgresDomainStoreSuite) TestExecuteTransition() {
	d := s.newDomain("exec.gov")
	s.Require().NoError(s.store.Create(s.ctx, d))

	updated, err := s.store.Execute(s.ctx, "exec.gov",
		func(cur *models.Domain) error {
			if cur.State != models.StateUnknown {
				return sentinel.ErrInvalidState
			}
			return nil
		},
		func(cur *models.Domain) {
			cur.State = models.StateDNSNeeded
		})
	s.Require().NoError(err)
	s.Equal(models.StateDNSNeeded, updated.State)
	s.Equal(1, updated.Version)

	s.Run("timestamps survive the round trip", func() {
		found, err := s.store.FindByName(s.ctx, "exec.gov")
		s.Require().NoError(err)
		s.True(found.UpdatedAt.Equal(s.now))
	})
}

func (s *PostgresDomainStoreSuite) TestExecuteValidateFailureRollsBack() {
	d := s.newDomain("rollback.gov")
	s.Require().NoError(s.store.Create(s.ctx, d))

	_, err := s.store.Execute(s.ctx, "rollback.gov",
		func(*models.Domain) error { return sentinel.ErrInvalidState },
		func(cur *models.Domain) { cur.State = models.StateDeleted })
	s.Require().Error(err)

	found, err := s.store.FindByName(s.ctx, "rollback.gov")
	s.Require().NoError(err)
	s.Equal(models.StateUnknown, found.State)
	s.Equal(0, found.Version)
}

func (s *PostgresDomainStoreSuite) TestDelete() {
	d := s.newDomain("gone.gov")
	s.Require().NoError(s.store.Create(s.ctx, d))
	s.Require().NoError(s.store.Delete(s.ctx, d.ID))

	_, err := s.store.FindByName(s.ctx, "gone.gov")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
