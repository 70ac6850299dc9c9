package handler

import (
	"time"

	"registrar/internal/requests/models"
)

// RequestResponse is the HTTP shape of a domain request.
type RequestResponse struct {
	ID                 string     `json:"id"`
	RequesterID        string     `json:"requester_id"`
	Investigator       string     `json:"investigator,omitempty"`
	RequestedDomain    string     `json:"requested_domain"`
	OrganizationName   string     `json:"organization_name"`
	FederalAgency      string     `json:"federal_agency,omitempty"`
	Suborganization    string     `json:"suborganization,omitempty"`
	Status             string     `json:"status"`
	FirstSubmitted     *time.Time `json:"first_submitted,omitempty"`
	LastSubmitted      *time.Time `json:"last_submitted,omitempty"`
	ActionNeededReason string     `json:"action_needed_reason,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	ApprovedDomainID   string     `json:"approved_domain_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// FromRequest converts a domain request to its HTTP shape.
func FromRequest(r *models.DomainRequest) *RequestResponse {
	resp := &RequestResponse{
		ID:                 r.ID.String(),
		RequesterID:        r.RequesterID.String(),
		RequestedDomain:    r.RequestedDomain,
		OrganizationName:   r.OrganizationName,
		FederalAgency:      r.FederalAgency,
		Suborganization:    r.Suborganization,
		Status:             string(r.Status),
		FirstSubmitted:     r.FirstSubmitted,
		LastSubmitted:      r.LastSubmitted,
		ActionNeededReason: r.ActionNeededReason,
		RejectionReason:    r.RejectionReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.Investigator != nil {
		resp.Investigator = r.Investigator.String()
	}
	if r.ApprovedDomainID != nil {
		resp.ApprovedDomainID = r.ApprovedDomainID.String()
	}
	return resp
}
