// Package service implements the domain request approval workflow.
//
// The workflow is the only path to a Domain: approval creates the local
// domain row and grants the requester the manager role, and the registry
// provisioning happens later through the domain lifecycle. Guards run
// before any mutation, so a refused event leaves the request, the domain
// table, and every collaborator untouched.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	domainmodels "registrar/internal/domains/models"
	"registrar/internal/notify"
	"registrar/internal/requests/metrics"
	"registrar/internal/requests/models"
	"registrar/internal/roles"
	"registrar/internal/users"
	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Event names a workflow transition.
type Event string

const (
	EventSubmit              Event = "submit"
	EventInReview            Event = "in_review"
	EventActionNeeded        Event = "action_needed"
	EventApprove             Event = "approve"
	EventWithdraw            Event = "withdraw"
	EventReject              Event = "reject"
	EventRejectWithPrejudice Event = "reject_with_prejudice"
)

// sources declares the legal source statuses per event. An event from any
// other status raises TransitionNotAllowedError with zero side effects.
var sources = map[Event][]models.Status{
	EventSubmit: {models.StatusStarted, models.StatusInReview,
		models.StatusActionNeeded, models.StatusWithdrawn},
	EventInReview: {models.StatusSubmitted, models.StatusActionNeeded,
		models.StatusApproved, models.StatusRejected},
	EventActionNeeded: {models.StatusInReview, models.StatusApproved,
		models.StatusRejected},
	EventApprove: {models.StatusSubmitted, models.StatusInReview,
		models.StatusActionNeeded, models.StatusRejected},
	EventWithdraw: {models.StatusSubmitted, models.StatusInReview,
		models.StatusActionNeeded},
	EventReject:              {models.StatusInReview, models.StatusApproved, models.StatusActionNeeded},
	EventRejectWithPrejudice: {models.StatusInReview, models.StatusApproved, models.StatusActionNeeded},
}

func allowed(event Event, status models.Status) bool {
	for _, s := range sources[event] {
		if s == status {
			return true
		}
	}
	return false
}

// AgencyDirectory resolves federal agency names.
type AgencyDirectory interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Service drives domain requests through the approval workflow.
type Service struct {
	requests RequestStore
	domains  DomainProvisioner
	info     InformationStore
	roles    roles.Store
	users    users.Directory
	agencies AgencyDirectory
	sender   notify.Sender
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithSender(sender notify.Sender) Option {
	return func(s *Service) { s.sender = sender }
}

// New constructs the request workflow service.
func New(requests RequestStore, domains DomainProvisioner, infoStore InformationStore,
	roleStore roles.Store, userDir users.Directory, agencyDir AgencyDirectory,
	opts ...Option) (*Service, error) {

	if requests == nil {
		return nil, errors.New("request store is required")
	}
	if domains == nil {
		return nil, errors.New("domain provisioner is required")
	}
	if infoStore == nil {
		return nil, errors.New("domain information store is required")
	}
	if roleStore == nil {
		return nil, errors.New("role store is required")
	}
	if userDir == nil {
		return nil, errors.New("user directory is required")
	}
	if agencyDir == nil {
		return nil, errors.New("agency directory is required")
	}
	s := &Service{
		requests: requests,
		domains:  domains,
		info:     infoStore,
		roles:    roleStore,
		users:    userDir,
		agencies: agencyDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.sender == nil {
		s.sender = notify.Discard{}
	}
	return s, nil
}

// Create starts a new request. A restricted account cannot open one.
func (s *Service) Create(ctx context.Context, requesterID id.UserID, requestedDomain, organizationName string) (*models.DomainRequest, error) {
	requester, err := s.users.Find(ctx, requesterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "requester not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load requester")
	}
	if requester.IsRestricted() {
		return nil, derrors.New(derrors.CodeForbidden, "account is restricted from new requests")
	}

	r, err := models.NewDomainRequest(id.RequestID(uuid.New()), requesterID,
		requestedDomain, organizationName, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to store request")
	}
	return r, nil
}

// Get returns a request by id.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error) {
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "request not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load request")
	}
	return r, nil
}

// ListByStatus returns every request in the given status.
func (s *Service) ListByStatus(ctx context.Context, status models.Status) ([]*models.DomainRequest, error) {
	if !status.Valid() {
		return nil, derrors.Newf(derrors.CodeBadRequest, "invalid status %q", status)
	}
	return s.requests.ListByStatus(ctx, status)
}

// AssignInvestigator attaches a staff reviewer to the request.
func (s *Service) AssignInvestigator(ctx context.Context, requestID id.RequestID, investigatorID id.UserID) (*models.DomainRequest, error) {
	investigator, err := s.users.Find(ctx, investigatorID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeNotFound, "investigator not found")
	}
	if !investigator.IsStaff {
		return nil, derrors.New(derrors.CodeForbidden, "investigator must be staff")
	}

	return s.requests.Execute(ctx, requestID,
		func(cur *models.DomainRequest) error {
			if cur.Status == models.StatusApproved {
				return derrors.New(derrors.CodeInvariantViolation,
					"approved requests are immutable")
			}
			return nil
		},
		func(cur *models.DomainRequest) {
			v := investigatorID
			cur.Investigator = &v
		})
}

// Submit sends the request for review.
//
// The confirmation email goes out only when leaving started or withdrawn.
// Resubmission after action needed already produced one confirmation for
// this case; a second would read as a new case to the requester.
func (s *Service) Submit(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error) {
	r, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !allowed(EventSubmit, r.Status) {
		s.metrics.ObserveTransitionFailure(string(EventSubmit))
		return nil, &TransitionNotAllowedError{Event: EventSubmit, From: r.Status}
	}
	if err := domainmodels.ValidateDomainName(r.RequestedDomain); err != nil {
		s.metrics.ObserveTransitionFailure(string(EventSubmit))
		return nil, err
	}

	statusBefore := r.Status
	updated, err := s.transition(ctx, requestID, EventSubmit,
		func(cur *models.DomainRequest) {
			cur.MarkSubmitted(requestcontext.Now(ctx))
		})
	if err != nil {
		return nil, err
	}

	if statusBefore == models.StatusStarted || statusBefore == models.StatusWithdrawn {
		s.notifyRequester(ctx, updated, notify.TemplateSubmissionConfirmed, nil)
	}
	return updated, nil
}

// InReview moves the request into active investigation.
func (s *Service) InReview(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error) {
	return s.review(ctx, requestID, EventInReview, "")
}

// ActionNeeded bounces the request back to the requester with a reason.
func (s *Service) ActionNeeded(ctx context.Context, requestID id.RequestID, reason string) (*models.DomainRequest, error) {
	if reason == "" {
		return nil, derrors.New(derrors.CodeBadRequest, "an action needed reason is required")
	}
	updated, err := s.review(ctx, requestID, EventActionNeeded, reason)
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, updated, notify.TemplateActionNeeded,
		map[string]string{"reason": reason})
	return updated, nil
}

// review implements the shared guard-and-move for the investigation
// events: an investigator must be assigned and be staff, and an event that
// moves away from approved must first reverse the approval.
func (s *Service) review(ctx context.Context, requestID id.RequestID, event Event, reason string) (*models.DomainRequest, error) {
	r, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !allowed(event, r.Status) {
		s.metrics.ObserveTransitionFailure(string(event))
		return nil, &TransitionNotAllowedError{Event: event, From: r.Status}
	}
	if err := s.requireStaffInvestigator(ctx, r); err != nil {
		s.metrics.ObserveTransitionFailure(string(event))
		return nil, err
	}
	if r.Status == models.StatusApproved {
		if err := s.reverseApproval(ctx, r); err != nil {
			s.metrics.ObserveTransitionFailure(string(event))
			return nil, err
		}
	}

	return s.transition(ctx, requestID, event, func(cur *models.DomainRequest) {
		cur.ClearReviewReasons()
		switch event {
		case EventInReview:
			cur.Status = models.StatusInReview
		case EventActionNeeded:
			cur.Status = models.StatusActionNeeded
			cur.ActionNeededReason = reason
		case EventReject:
			cur.Status = models.StatusRejected
			cur.RejectionReason = reason
		case EventRejectWithPrejudice:
			cur.Status = models.StatusIneligible
			cur.RejectionReason = reason
		}
		cur.ApprovedDomainID = nil
	})
}

// Approve turns the request into a domain.
//
// Order matters: the duplicate-name check happens before any mutation, the
// domain row and manager role are created next, and the status change is
// committed last. The registry CreateDomain call is not part of approval;
// it happens later inside the domain lifecycle.
func (s *Service) Approve(ctx context.Context, requestID id.RequestID, sendEmail bool) (*models.DomainRequest, error) {
	r, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !allowed(EventApprove, r.Status) {
		s.metrics.ObserveTransitionFailure(string(EventApprove))
		return nil, &TransitionNotAllowedError{Event: EventApprove, From: r.Status}
	}
	if err := s.requireStaffInvestigator(ctx, r); err != nil {
		s.metrics.ObserveTransitionFailure(string(EventApprove))
		return nil, err
	}

	agency, err := s.agencies.Resolve(ctx, r.FederalAgency)
	if err != nil {
		s.metrics.ObserveTransitionFailure(string(EventApprove))
		return nil, derrors.Newf(derrors.CodeBadRequest, "unknown federal agency %q", r.FederalAgency)
	}

	// Duplicate-name invariant, checked before any mutation.
	if _, err := s.domains.Get(ctx, r.RequestedDomain); err == nil {
		s.metrics.ObserveTransitionFailure(string(EventApprove))
		return nil, &DomainInUseError{Domain: r.RequestedDomain}
	} else if !derrors.HasCode(err, derrors.CodeNotFound) {
		s.metrics.ObserveTransitionFailure(string(EventApprove))
		return nil, err
	}

	d, err := s.domains.CreateDomain(ctx, r.RequestedDomain)
	if err != nil {
		s.metrics.ObserveTransitionFailure(string(EventApprove))
		if derrors.HasCode(err, derrors.CodeConflict) {
			return nil, &DomainInUseError{Domain: r.RequestedDomain}
		}
		return nil, err
	}

	if _, err := s.roles.Grant(ctx, r.RequesterID, d.ID, roles.RoleManager); err != nil {
		s.logger.Error("failed to grant manager role after domain creation",
			"request_id", r.ID, "domain", d.Name, "error", err)
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to grant manager role")
	}

	// Snapshot the request data as it stands at approval, suborganization
	// included. Later review rounds rewrite the request; the snapshot keeps
	// what the domain was approved as.
	now := requestcontext.Now(ctx)
	if err := s.info.Create(ctx, &domainmodels.DomainInformation{
		DomainID:         d.ID,
		RequestID:        r.ID,
		CreatorID:        r.RequesterID,
		OrganizationName: r.OrganizationName,
		FederalAgency:    agency,
		Suborganization:  r.Suborganization,
		Purpose:          r.Purpose,
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to snapshot request data")
	}

	updated, err := s.transition(ctx, requestID, EventApprove,
		func(cur *models.DomainRequest) {
			cur.Status = models.StatusApproved
			cur.FederalAgency = agency
			cur.ClearReviewReasons()
			domainID := d.ID
			cur.ApprovedDomainID = &domainID
		})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveApproval()
	if sendEmail {
		s.notifyRequester(ctx, updated, notify.TemplateRequestApproved,
			map[string]string{"domain": d.Name})
	}
	return updated, nil
}

// Withdraw pulls the request back at the requester's ask. No registry or
// domain interaction; nothing has been created yet from these statuses.
func (s *Service) Withdraw(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error) {
	updated, err := s.transition(ctx, requestID, EventWithdraw,
		func(cur *models.DomainRequest) {
			cur.Status = models.StatusWithdrawn
		})
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, updated, notify.TemplateRequestWithdrawn, nil)
	return updated, nil
}

// Reject denies the request with a reason.
func (s *Service) Reject(ctx context.Context, requestID id.RequestID, reason string) (*models.DomainRequest, error) {
	if reason == "" {
		return nil, derrors.New(derrors.CodeBadRequest, "a rejection reason is required")
	}
	updated, err := s.review(ctx, requestID, EventReject, reason)
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, updated, notify.TemplateRequestRejected,
		map[string]string{"reason": reason})
	return updated, nil
}

// RejectWithPrejudice denies the request and permanently restricts the
// requester's account. The restriction is logged and not reversible by
// retry.
func (s *Service) RejectWithPrejudice(ctx context.Context, requestID id.RequestID, reason string) (*models.DomainRequest, error) {
	if reason == "" {
		return nil, derrors.New(derrors.CodeBadRequest, "a rejection reason is required")
	}
	updated, err := s.review(ctx, requestID, EventRejectWithPrejudice, reason)
	if err != nil {
		return nil, err
	}

	if err := s.users.Restrict(ctx, updated.RequesterID); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to restrict requester account")
	}
	s.metrics.ObserveRestriction()
	s.logger.Warn("requester account restricted",
		"request_id", updated.ID, "requester_id", updated.RequesterID, "reason", reason)

	s.notifyRequester(ctx, updated, notify.TemplateRequestRejected,
		map[string]string{"reason": reason})
	return updated, nil
}

// transition commits one status change under the store's row lock,
// re-checking legality so two racing events cannot both apply.
func (s *Service) transition(ctx context.Context, requestID id.RequestID, event Event,
	mutate func(*models.DomainRequest)) (*models.DomainRequest, error) {

	updated, err := s.requests.Execute(ctx, requestID,
		func(cur *models.DomainRequest) error {
			if !allowed(event, cur.Status) {
				return &TransitionNotAllowedError{Event: event, From: cur.Status}
			}
			return nil
		},
		mutate)
	if err != nil {
		s.metrics.ObserveTransitionFailure(string(event))
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "request not found")
		}
		return nil, err
	}

	s.metrics.ObserveTransition(string(event))
	s.logger.Info("request transition",
		"request_id", requestID, "event", event, "status_after", updated.Status)
	return updated, nil
}

// requireStaffInvestigator enforces the review guard: an investigator is
// assigned and the account is staff.
func (s *Service) requireStaffInvestigator(ctx context.Context, r *models.DomainRequest) error {
	if !r.HasInvestigator() {
		return derrors.New(derrors.CodeInvariantViolation, "no investigator assigned")
	}
	investigator, err := s.users.Find(ctx, *r.Investigator)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to load investigator")
	}
	if !investigator.IsStaff {
		return derrors.New(derrors.CodeInvariantViolation, "investigator is not staff")
	}
	return nil
}

// reverseApproval undoes the local side of an approval: the domain row,
// its contacts, the approval snapshot, and the manager roles all go away.
// Refused when the domain
// has already been provisioned at the registry; that is no longer a
// local-only fact and must be handled through the domain lifecycle.
func (s *Service) reverseApproval(ctx context.Context, r *models.DomainRequest) error {
	if r.ApprovedDomainID == nil {
		return nil
	}

	d, err := s.domains.Get(ctx, r.RequestedDomain)
	if err != nil {
		if derrors.HasCode(err, derrors.CodeNotFound) {
			return nil
		}
		return err
	}
	if d.State != domainmodels.StateUnknown {
		return derrors.Newf(derrors.CodeInvariantViolation,
			"domain %s is already provisioned and cannot be un-approved", d.Name)
	}

	if err := s.roles.RevokeByDomain(ctx, d.ID); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to revoke roles")
	}
	if err := s.info.DeleteByDomain(ctx, d.ID); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to delete approval snapshot")
	}
	if err := s.domains.DeleteLocal(ctx, d); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to delete domain row")
	}
	s.logger.Info("approval reversed; local domain removed",
		"request_id", r.ID, "domain", d.Name)
	return nil
}

// notifyRequester sends one notification to the requester's address.
// Delivery failures are logged, never fatal: the workflow fact is already
// committed and mail is best effort.
func (s *Service) notifyRequester(ctx context.Context, r *models.DomainRequest, template notify.Template, extra map[string]string) {
	requester, err := s.users.Find(ctx, r.RequesterID)
	if err != nil {
		s.logger.Error("cannot notify requester", "request_id", r.ID, "error", err)
		return
	}

	msgCtx := map[string]string{"requested_domain": r.RequestedDomain}
	for k, v := range extra {
		msgCtx[k] = v
	}
	msg := notify.Message{Template: template, Recipient: requester.Email, Context: msgCtx}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("notification send failed",
			"request_id", r.ID, "template", template, "error", err)
	}
}
