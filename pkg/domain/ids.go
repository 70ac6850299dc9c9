// Package domain defines identity primitives shared across the registrar.
//
// IDs are distinct uuid-backed types so the compiler rejects cross-entity
// assignment (a DomainID can never be passed where a RequestID is expected).
package domain

import (
	"github.com/google/uuid"

	"registrar/pkg/derrors"
)

type (
	// DomainID identifies a registered domain row.
	DomainID uuid.UUID
	// RequestID identifies a domain request.
	RequestID uuid.UUID
	// ContactID identifies a public contact row (not the EPP registry id).
	ContactID uuid.UUID
	// UserID identifies an application user.
	UserID uuid.UUID
	// RoleID identifies a user-domain role grant.
	RoleID uuid.UUID
)

func (id DomainID) String() string  { return uuid.UUID(id).String() }
func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id ContactID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id RoleID) String() string    { return uuid.UUID(id).String() }

func (id DomainID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "%s id cannot be nil", kind)
	}
	return u, nil
}

// ParseDomainID validates and returns a DomainID.
func ParseDomainID(s string) (DomainID, error) {
	u, err := parseUUID(s, "domain")
	return DomainID(u), err
}

// ParseRequestID validates and returns a RequestID.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request")
	return RequestID(u), err
}

// ParseContactID validates and returns a ContactID.
func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID(s, "contact")
	return ContactID(u), err
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}
