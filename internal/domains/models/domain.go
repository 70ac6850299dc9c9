package models

import (
	"regexp"
	"strings"
	"time"

	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
)

// State is the domain lifecycle state: the local projection of registry
// truth. It may lag the registry by at most one unacknowledged command.
type State string

const (
	// StateUnknown is the birth state of an approved domain; nothing has
	// been provisioned at the registry yet.
	StateUnknown State = "unknown"
	// StateDNSNeeded means the domain exists at the registry but has no
	// working delegation.
	StateDNSNeeded State = "dns needed"
	// StateReady means the domain is delegated and resolving.
	StateReady State = "ready"
	// StateOnHold means a clientHold status stops resolution without
	// deleting the domain.
	StateOnHold State = "on hold"
	// StateDeleted is terminal. The row is kept; the registry object is
	// gone.
	StateDeleted State = "deleted"
)

func (s State) Valid() bool {
	switch s {
	case StateUnknown, StateDNSNeeded, StateReady, StateOnHold, StateDeleted:
		return true
	}
	return false
}

// Domain is a registered (or provisioning) domain.
//
// Invariants:
//   - Name is a lowercase, syntactically valid .gov name
//   - FirstReady is set at most once, the first time state becomes ready
//   - DeletedAt is set only on the transition into deleted
//   - state deleted implies DeletedAt set and ExpirationDate nil
//   - Version increments on every persisted mutation (optimistic lock)
type Domain struct {
	ID             id.DomainID `json:"id"`
	Name           string      `json:"name"`
	State          State       `json:"state"`
	FirstReady     *time.Time  `json:"first_ready,omitempty"`
	ExpirationDate *time.Time  `json:"expiration_date,omitempty"`
	DeletedAt      *time.Time  `json:"deleted_at,omitempty"`
	Version        int         `json:"version"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewDomain creates a domain row in the unknown state. Only request approval
// calls this; there is no other path to a Domain.
func NewDomain(domainID id.DomainID, name string, now time.Time) (*Domain, error) {
	name = NormalizeDomainName(name)
	if err := ValidateDomainName(name); err != nil {
		return nil, err
	}
	return &Domain{
		ID:        domainID,
		Name:      name,
		State:     StateUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the domain is live from a workflow perspective
// (provisioned or provisioning; not deleted).
func (d *Domain) IsActive() bool {
	return d.State != StateDeleted
}

// MarkFirstReady records the first transition into ready. Subsequent calls
// are no-ops so the timestamp is never overwritten.
func (d *Domain) MarkFirstReady(now time.Time) {
	if d.FirstReady == nil {
		t := now
		d.FirstReady = &t
	}
}

// MarkDeleted finalizes deletion: sets the deleted timestamp and clears the
// expiration date, which no longer has meaning once the registry object is
// gone.
func (d *Domain) MarkDeleted(now time.Time) {
	d.State = StateDeleted
	t := now
	d.DeletedAt = &t
	d.ExpirationDate = nil
}

// NormalizeDomainName lowercases and trims a user-entered domain name.
func NormalizeDomainName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var domainLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateDomainName checks .gov domain syntax: lowercase FQDN, valid DNS
// labels, ending in .gov.
func ValidateDomainName(name string) error {
	if name == "" {
		return derrors.New(derrors.CodeInvalidInput, "domain name is required")
	}
	if name != strings.ToLower(name) {
		return derrors.New(derrors.CodeInvalidInput, "domain name must be lowercase")
	}
	if len(name) > 253 {
		return derrors.New(derrors.CodeInvalidInput, "domain name too long")
	}
	if !strings.HasSuffix(name, ".gov") {
		return derrors.Newf(derrors.CodeInvalidInput, "%q is not a .gov domain", name)
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return derrors.Newf(derrors.CodeInvalidInput, "%q is not a valid domain name", name)
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 || !domainLabel.MatchString(label) {
			return derrors.Newf(derrors.CodeInvalidInput, "%q is not a valid domain name", name)
		}
	}
	return nil
}
