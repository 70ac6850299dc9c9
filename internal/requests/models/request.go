// Package models defines the domain request entity, the approval workflow
// object whose successful completion is the only path to creating a domain.
package models

import (
	"time"

	"github.com/google/uuid"

	domainmodels "registrar/internal/domains/models"
	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
)

// Status is a domain request's position in the approval workflow.
type Status string

const (
	// StatusStarted is the birth state: the requester is still filling
	// the request in and nothing has been sent for review.
	StatusStarted Status = "started"
	// StatusSubmitted means the request awaits analyst triage.
	StatusSubmitted Status = "submitted"
	// StatusInReview means an investigator is actively working it.
	StatusInReview Status = "in review"
	// StatusActionNeeded means the investigator bounced it back to the
	// requester with a reason.
	StatusActionNeeded Status = "action needed"
	// StatusApproved means a domain row was created for the request.
	StatusApproved Status = "approved"
	// StatusRejected means the request was denied with a reason.
	StatusRejected Status = "rejected"
	// StatusWithdrawn means the requester pulled it back.
	StatusWithdrawn Status = "withdrawn"
	// StatusIneligible means the requester's account was restricted.
	StatusIneligible Status = "ineligible"
)

func (s Status) Valid() bool {
	switch s {
	case StatusStarted, StatusSubmitted, StatusInReview, StatusActionNeeded,
		StatusApproved, StatusRejected, StatusWithdrawn, StatusIneligible:
		return true
	}
	return false
}

// DomainRequest is one organization's application for a domain name.
//
// Once approved the request becomes immutable except for the reason
// cleanup fields; the approved domain link is set exactly once and the
// same domain is never claimed by two requests.
type DomainRequest struct {
	ID          id.RequestID `json:"id"`
	RequesterID id.UserID    `json:"requester_id"`
	// Investigator is the staff member assigned to review the request.
	// Review transitions require one to be assigned.
	Investigator *id.UserID `json:"investigator,omitempty"`

	RequestedDomain  string `json:"requested_domain"`
	OrganizationName string `json:"organization_name"`
	// FederalAgency defaults to the non-federal placeholder at approval
	// time when the requester left it unset.
	FederalAgency   string `json:"federal_agency,omitempty"`
	Suborganization string `json:"suborganization,omitempty"`
	Purpose         string `json:"purpose,omitempty"`

	Status Status `json:"status"`

	// FirstSubmitted is set on the first submission only; LastSubmitted
	// moves on every submission including resubmissions.
	FirstSubmitted *time.Time `json:"first_submitted,omitempty"`
	LastSubmitted  *time.Time `json:"last_submitted,omitempty"`

	ActionNeededReason string `json:"action_needed_reason,omitempty"`
	RejectionReason    string `json:"rejection_reason,omitempty"`

	// ApprovedDomainID links the request to the domain its approval
	// created. Set once; cleared only when approval is reversed.
	ApprovedDomainID *id.DomainID `json:"approved_domain_id,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDomainRequest creates a request in the started state. The requested
// name is validated here so a request can never hold an unusable name.
func NewDomainRequest(requestID id.RequestID, requesterID id.UserID, requestedDomain, organizationName string, now time.Time) (*DomainRequest, error) {
	if requesterID.IsZero() {
		return nil, derrors.New(derrors.CodeInvalidInput, "requester is required")
	}
	requestedDomain = domainmodels.NormalizeDomainName(requestedDomain)
	if err := domainmodels.ValidateDomainName(requestedDomain); err != nil {
		return nil, err
	}
	if organizationName == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "organization name is required")
	}
	if requestID.IsZero() {
		requestID = id.RequestID(uuid.New())
	}
	return &DomainRequest{
		ID:               requestID,
		RequesterID:      requesterID,
		RequestedDomain:  requestedDomain,
		OrganizationName: organizationName,
		Status:           StatusStarted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HasInvestigator reports whether a reviewer is assigned.
func (r *DomainRequest) HasInvestigator() bool {
	return r.Investigator != nil && !r.Investigator.IsZero()
}

// MarkSubmitted stamps the submission timestamps and clears any reason
// left from an action-needed round. The first submission time is set once
// and never moves again.
func (r *DomainRequest) MarkSubmitted(now time.Time) {
	r.Status = StatusSubmitted
	r.ActionNeededReason = ""
	if r.FirstSubmitted == nil {
		t := now
		r.FirstSubmitted = &t
	}
	t := now
	r.LastSubmitted = &t
}

// ClearReviewReasons drops the reason fields that only make sense in the
// state that set them.
func (r *DomainRequest) ClearReviewReasons() {
	r.ActionNeededReason = ""
	r.RejectionReason = ""
}
