// Package roles records which users hold which role on which domain.
// Approval grants the requester the manager role; everything else about
// authorization happens at the transport layer.
package roles

import (
	"time"

	id "registrar/pkg/domain"
)

// Role is a user's capability on one domain.
type Role string

const (
	// RoleManager controls the domain: contacts, delegation, lifecycle.
	RoleManager Role = "manager"
)

// UserDomainRole grants one user one role on one domain.
type UserDomainRole struct {
	ID        id.RoleID   `json:"id"`
	UserID    id.UserID   `json:"user_id"`
	DomainID  id.DomainID `json:"domain_id"`
	Role      Role        `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}
