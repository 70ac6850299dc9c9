package request

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/requests/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

type RequestStoreSuite struct {
	suite.Suite

	ctx   context.Context
	now   time.Time
	store *InMemory
}

func TestRequestStoreSuite(t *testing.T) {
	suite.Run(t, new(RequestStoreSuite))
}

func (s *RequestStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = NewInMemory()
}

func (s *RequestStoreSuite) newRequest(name string) *models.DomainRequest {
	r, err := models.NewDomainRequest(
		id.RequestID(uuid.New()), id.UserID(uuid.New()), name, "City of Springfield", s.now)
	s.Require().NoError(err)
	return r
}

func (s *RequestStoreSuite) TestCreateAndFind() {
	r := s.newRequest("springfield.gov")
	s.Require().NoError(s.store.Create(s.ctx, r))

	found, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("springfield.gov", found.RequestedDomain)
	s.Equal(models.StatusStarted, found.Status)
}

func (s *RequestStoreSuite) TestCreateDuplicateConflicts() {
	r := s.newRequest("dup.gov")
	s.Require().NoError(s.store.Create(s.ctx, r))
	s.ErrorIs(s.store.Create(s.ctx, r), sentinel.ErrConflict)
}

func (s *RequestStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, id.RequestID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RequestStoreSuite) TestListByRequester() {
	r1 := s.newRequest("one.gov")
	r2 := s.newRequest("two.gov")
	r2.RequesterID = r1.RequesterID
	other := s.newRequest("three.gov")
	s.Require().NoError(s.store.Create(s.ctx, r1))
	s.Require().NoError(s.store.Create(s.ctx, r2))
	s.Require().NoError(s.store.Create(s.ctx, other))

	mine, err := s.store.ListByRequester(s.ctx, r1.RequesterID)
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *RequestStoreSuite) TestExistsByApprovedDomain() {
	r := s.newRequest("claimed.gov")
	domainID := id.DomainID(uuid.New())
	r.ApprovedDomainID = &domainID
	s.Require().NoError(s.store.Create(s.ctx, r))

	claimed, err := s.store.ExistsByApprovedDomain(s.ctx, domainID)
	s.Require().NoError(err)
	s.True(claimed)

	unclaimed, err := s.store.ExistsByApprovedDomain(s.ctx, id.DomainID(uuid.New()))
	s.Require().NoError(err)
	s.False(unclaimed)
}

func (s *RequestStoreSuite) TestExecute() {
	r := s.newRequest("exec.gov")
	s.Require().NoError(s.store.Create(s.ctx, r))

	s.Run("validate failure leaves the row untouched", func() {
		_, err := s.store.Execute(s.ctx, r.ID,
			func(*models.DomainRequest) error { return sentinel.ErrInvalidState },
			func(cur *models.DomainRequest) { cur.Status = models.StatusApproved })
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusStarted, found.Status)
		s.Equal(0, found.Version)
	})

	s.Run("mutation bumps version and timestamp", func() {
		later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
		updated, err := s.store.Execute(later, r.ID,
			func(*models.DomainRequest) error { return nil },
			func(cur *models.DomainRequest) { cur.MarkSubmitted(s.now.Add(time.Hour)) })
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, updated.Status)
		s.Equal(1, updated.Version)
		s.Equal(s.now.Add(time.Hour), updated.UpdatedAt)
	})

	s.Run("unknown request", func() {
		_, err := s.store.Execute(s.ctx, id.RequestID(uuid.New()),
			func(*models.DomainRequest) error { return nil },
			func(*models.DomainRequest) {})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
