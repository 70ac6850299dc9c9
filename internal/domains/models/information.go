package models

import (
	"time"

	id "registrar/pkg/domain"
)

// DomainInformation is the snapshot of the approved request's data, taken
// at approval time. The request keeps evolving through later reviews; the
// snapshot records what the domain was approved as. One per domain, and it
// goes away if the approval is reversed.
type DomainInformation struct {
	DomainID         id.DomainID
	RequestID        id.RequestID
	CreatorID        id.UserID
	OrganizationName string
	FederalAgency    string
	Suborganization  string
	Purpose          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
