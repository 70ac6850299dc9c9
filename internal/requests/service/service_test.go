package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/agencies"
	domainmodels "registrar/internal/domains/models"
	contactstore "registrar/internal/domains/store/contact"
	domainstore "registrar/internal/domains/store/domain"
	"registrar/internal/domains/store/information"
	"registrar/internal/notify"
	"registrar/internal/requests/models"
	"registrar/internal/requests/store/request"
	"registrar/internal/roles"
	"registrar/internal/users"
	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
)

// fakeProvisioner implements DomainProvisioner over the in-memory domain
// store, with no registry in sight: approval never talks to the registry.
type fakeProvisioner struct {
	domains  *domainstore.InMemory
	contacts *contactstore.InMemory
}

func (p *fakeProvisioner) CreateDomain(ctx context.Context, name string) (*domainmodels.Domain, error) {
	d, err := domainmodels.NewDomain(id.DomainID(uuid.New()), name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := p.domains.Create(ctx, d); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeConflict, "domain exists")
	}
	return d, nil
}

func (p *fakeProvisioner) Get(ctx context.Context, name string) (*domainmodels.Domain, error) {
	d, err := p.domains.FindByName(ctx, name)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeNotFound, "domain not found")
	}
	return d, nil
}

func (p *fakeProvisioner) DeleteLocal(ctx context.Context, d *domainmodels.Domain) error {
	if err := p.contacts.DeleteByDomain(ctx, d.ID); err != nil {
		return err
	}
	return p.domains.Delete(ctx, d.ID)
}

type RequestServiceSuite struct {
	suite.Suite

	ctx    context.Context
	now    time.Time
	store  *request.InMemory
	prov   *fakeProvisioner
	info   *information.InMemory
	roles  *roles.InMemory
	users  *users.InMemory
	sender *notify.Recorder
	svc    *Service

	requester    *users.User
	investigator *users.User
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = request.NewInMemory()
	s.prov = &fakeProvisioner{
		domains:  domainstore.NewInMemory(),
		contacts: contactstore.NewInMemory(),
	}
	s.info = information.NewInMemory()
	s.roles = roles.NewInMemory()
	s.users = users.NewInMemory()
	s.sender = notify.NewRecorder()

	s.requester = &users.User{ID: id.UserID(uuid.New()), Email: "mayor@springfield.gov"}
	s.investigator = &users.User{ID: id.UserID(uuid.New()), Email: "analyst@get.gov", IsStaff: true}
	s.users.Add(s.requester)
	s.users.Add(s.investigator)

	svc, err := New(s.store, s.prov, s.info, s.roles, s.users, agencies.NewStatic(nil),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSender(s.sender))
	s.Require().NoError(err)
	s.svc = svc
}

func (s *RequestServiceSuite) newRequest() *models.DomainRequest {
	r, err := s.svc.Create(s.ctx, s.requester.ID, "example.gov", "City of Springfield")
	s.Require().NoError(err)
	return r
}

func (s *RequestServiceSuite) submitted() *models.DomainRequest {
	r := s.newRequest()
	r, err := s.svc.Submit(s.ctx, r.ID)
	s.Require().NoError(err)
	return r
}

func (s *RequestServiceSuite) inReview() *models.DomainRequest {
	r := s.submitted()
	_, err := s.svc.AssignInvestigator(s.ctx, r.ID, s.investigator.ID)
	s.Require().NoError(err)
	r, err = s.svc.InReview(s.ctx, r.ID)
	s.Require().NoError(err)
	return r
}

func (s *RequestServiceSuite) TestSubmitFromStarted() {
	r := s.newRequest()

	updated, err := s.svc.Submit(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, updated.Status)
	s.Require().NotNil(updated.FirstSubmitted)
	s.Equal(s.now, *updated.FirstSubmitted)

	s.Run("confirmation sent exactly once", func() {
		s.Equal(1, s.sender.CountByTemplate(notify.TemplateSubmissionConfirmed))
		s.Equal("mayor@springfield.gov", s.sender.Sent()[0].Recipient)
	})
}

func (s *RequestServiceSuite) TestResubmissionAfterActionNeededSendsNoConfirmation() {
	r := s.inReview()
	_, err := s.svc.ActionNeeded(s.ctx, r.ID, "purpose statement missing")
	s.Require().NoError(err)

	updated, err := s.svc.Submit(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(1, s.sender.CountByTemplate(notify.TemplateSubmissionConfirmed),
		"this case already got its confirmation")
	s.Empty(updated.ActionNeededReason, "resubmission leaves action-needed behind")
}

func (s *RequestServiceSuite) TestResubmissionAfterWithdrawSendsConfirmation() {
	r := s.submitted()
	_, err := s.svc.Withdraw(s.ctx, r.ID)
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(2, s.sender.CountByTemplate(notify.TemplateSubmissionConfirmed))
}

func (s *RequestServiceSuite) TestSubmitFromApprovedNotAllowed() {
	r := s.inReview()
	r, err := s.svc.Approve(s.ctx, r.ID, false)
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, r.ID)
	s.Require().Error(err)
	s.True(IsTransitionNotAllowed(err))
}

func (s *RequestServiceSuite) TestInReviewRequiresStaffInvestigator() {
	r := s.submitted()

	s.Run("no investigator", func() {
		_, err := s.svc.InReview(s.ctx, r.ID)
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeInvariantViolation))
	})

	s.Run("non-staff investigator cannot be assigned", func() {
		civilian := &users.User{ID: id.UserID(uuid.New()), Email: "someone@example.gov"}
		s.users.Add(civilian)
		_, err := s.svc.AssignInvestigator(s.ctx, r.ID, civilian.ID)
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeForbidden))
	})
}

func (s *RequestServiceSuite) TestApproveCreatesDomainAndManagerRole() {
	r := s.inReview()

	updated, err := s.svc.Approve(s.ctx, r.ID, true)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, updated.Status)
	s.Require().NotNil(updated.ApprovedDomainID)
	s.Equal(agencies.NonFederalAgency, updated.FederalAgency, "agency defaults when unset")

	d, err := s.prov.Get(s.ctx, "example.gov")
	s.Require().NoError(err)
	s.Equal(domainmodels.StateUnknown, d.State, "approval only creates the local row")
	s.Equal(d.ID, *updated.ApprovedDomainID)

	has, err := s.roles.HasRole(s.ctx, s.requester.ID, d.ID, roles.RoleManager)
	s.Require().NoError(err)
	s.True(has, "requester gets the manager role")

	info, err := s.info.FindByDomain(s.ctx, d.ID)
	s.Require().NoError(err, "approval snapshots the request data")
	s.Equal(r.ID, info.RequestID)
	s.Equal(s.requester.ID, info.CreatorID)
	s.Equal("City of Springfield", info.OrganizationName)
	s.Equal(agencies.NonFederalAgency, info.FederalAgency)

	s.Equal(1, s.sender.CountByTemplate(notify.TemplateRequestApproved))
}

func (s *RequestServiceSuite) TestApproveMaterializesSuborganization() {
	r := s.inReview()
	_, err := s.store.Execute(s.ctx, r.ID,
		func(*models.DomainRequest) error { return nil },
		func(cur *models.DomainRequest) {
			cur.Suborganization = "Parks Department"
			cur.Purpose = "City services portal"
		})
	s.Require().NoError(err)

	updated, err := s.svc.Approve(s.ctx, r.ID, false)
	s.Require().NoError(err)

	info, err := s.info.FindByDomain(s.ctx, *updated.ApprovedDomainID)
	s.Require().NoError(err)
	s.Equal("Parks Department", info.Suborganization)
	s.Equal("City services portal", info.Purpose)
}

func (s *RequestServiceSuite) TestApproveDomainInUse() {
	_, err := s.prov.CreateDomain(s.ctx, "example.gov")
	s.Require().NoError(err)

	r := s.inReview()
	_, err = s.svc.Approve(s.ctx, r.ID, true)
	s.Require().Error(err)
	s.True(IsDomainInUse(err))

	s.Run("request status unchanged", func() {
		cur, err := s.svc.Get(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusInReview, cur.Status)
		s.Nil(cur.ApprovedDomainID)
	})

	s.Run("no role was granted", func() {
		grants, err := s.roles.ListByUser(s.ctx, s.requester.ID)
		s.Require().NoError(err)
		s.Empty(grants)
	})
}

func (s *RequestServiceSuite) TestMovingAwayFromApprovedRemovesDomain() {
	r := s.inReview()
	r, err := s.svc.Approve(s.ctx, r.ID, false)
	s.Require().NoError(err)
	domainID := *r.ApprovedDomainID

	updated, err := s.svc.InReview(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInReview, updated.Status)
	s.Nil(updated.ApprovedDomainID)

	_, err = s.prov.Get(s.ctx, "example.gov")
	s.Require().Error(err, "the local domain row is gone")

	has, err := s.roles.HasRole(s.ctx, s.requester.ID, domainID, roles.RoleManager)
	s.Require().NoError(err)
	s.False(has, "the manager role is revoked")

	_, err = s.info.FindByDomain(s.ctx, domainID)
	s.Require().Error(err, "the approval snapshot is gone")
}

func (s *RequestServiceSuite) TestUnapproveRefusedOnceProvisioned() {
	r := s.inReview()
	r, err := s.svc.Approve(s.ctx, r.ID, false)
	s.Require().NoError(err)

	_, err = s.prov.domains.Execute(s.ctx, "example.gov",
		func(*domainmodels.Domain) error { return nil },
		func(cur *domainmodels.Domain) { cur.State = domainmodels.StateDNSNeeded })
	s.Require().NoError(err)

	_, err = s.svc.InReview(s.ctx, r.ID)
	s.Require().Error(err)
	s.True(derrors.HasCode(err, derrors.CodeInvariantViolation))
}

func (s *RequestServiceSuite) TestRejectClearsReasonOnReview() {
	r := s.inReview()
	r, err := s.svc.Reject(s.ctx, r.ID, "not a government entity")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, r.Status)
	s.Equal("not a government entity", r.RejectionReason)
	s.Equal(1, s.sender.CountByTemplate(notify.TemplateRequestRejected))

	back, err := s.svc.InReview(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Empty(back.RejectionReason, "leaving rejected clears the reason")
}

func (s *RequestServiceSuite) TestRejectWithPrejudiceRestrictsAccount() {
	r := s.inReview()

	updated, err := s.svc.RejectWithPrejudice(s.ctx, r.ID, "fraudulent application")
	s.Require().NoError(err)
	s.Equal(models.StatusIneligible, updated.Status)

	restricted, err := s.users.Find(s.ctx, s.requester.ID)
	s.Require().NoError(err)
	s.True(restricted.IsRestricted())

	s.Run("restricted account cannot open a new request", func() {
		_, err := s.svc.Create(s.ctx, s.requester.ID, "another.gov", "City of Springfield")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeForbidden))
	})
}

func (s *RequestServiceSuite) TestWithdraw() {
	r := s.submitted()

	updated, err := s.svc.Withdraw(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusWithdrawn, updated.Status)
	s.Equal(1, s.sender.CountByTemplate(notify.TemplateRequestWithdrawn))
}

func (s *RequestServiceSuite) TestCreateValidatesName() {
	_, err := s.svc.Create(s.ctx, s.requester.ID, "example.com", "City of Springfield")
	s.Require().Error(err)
	s.True(derrors.HasCode(err, derrors.CodeInvalidInput))
}
