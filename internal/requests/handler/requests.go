package handler

// CreateRequest is the body for POST /requests.
type CreateRequest struct {
	RequestedDomain  string `json:"requested_domain"`
	OrganizationName string `json:"organization_name"`
}

// AssignInvestigatorRequest is the body for PUT /requests/{id}/investigator.
type AssignInvestigatorRequest struct {
	InvestigatorID string `json:"investigator_id"`
}

// ReasonRequest carries the reason for action-needed transitions.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ApproveRequest is the body for POST /requests/{id}/approve.
type ApproveRequest struct {
	SuppressEmail bool `json:"suppress_email,omitempty"`
}

// RejectRequest is the body for POST /requests/{id}/reject.
type RejectRequest struct {
	Reason        string `json:"reason"`
	WithPrejudice bool   `json:"with_prejudice,omitempty"`
}
