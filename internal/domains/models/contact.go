package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
)

// ContactType is one of the four EPP contact roles attached to a domain.
type ContactType string

const (
	ContactRegistrant     ContactType = "registrant"
	ContactAdministrative ContactType = "administrative"
	ContactSecurity       ContactType = "security"
	ContactTechnical      ContactType = "technical"
)

// DefaultableContactTypes are the roles created with registry defaults when
// a domain leaves the unknown state and is missing contacts. The registrant
// is always created explicitly, never defaulted.
var DefaultableContactTypes = []ContactType{
	ContactAdministrative,
	ContactSecurity,
	ContactTechnical,
}

func (t ContactType) Valid() bool {
	switch t {
	case ContactRegistrant, ContactAdministrative, ContactSecurity, ContactTechnical:
		return true
	}
	return false
}

// PublicContact is a WHOIS-visible contact attached to one domain in one
// role. A contact record is never only local: every mutation must be
// followed by a registry update with recomputed disclose settings so the
// two copies converge.
type PublicContact struct {
	ID         id.ContactID `json:"id"`
	DomainID   id.DomainID  `json:"domain_id"`
	RegistryID string       `json:"registry_id"`
	Type       ContactType  `json:"contact_type"`

	Name        string   `json:"name"`
	Org         string   `json:"org,omitempty"`
	Streets     []string `json:"streets,omitempty"`
	City        string   `json:"city,omitempty"`
	Province    string   `json:"province,omitempty"`
	PostalCode  string   `json:"postal_code,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Voice       string   `json:"voice,omitempty"`
	Fax         string   `json:"fax,omitempty"`
	Email       string   `json:"email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registry default contact values used when a role is created lazily.
const (
	defaultContactName  = ".gov Registry Operations"
	defaultContactOrg   = "Cybersecurity and Infrastructure Security Agency"
	defaultContactEmail = "help@get.gov"
	defaultContactVoice = "+1.8884282866"
	defaultStreet       = "1110 N. Glebe Rd"
	defaultCity         = "Arlington"
	defaultProvince     = "VA"
	defaultPostalCode   = "22201"
	defaultCountryCode  = "US"
)

// DefaultContact builds a contact for the given role carrying registry
// defaults. The registry id is derived from a fresh uuid so concurrent
// creations never collide.
func DefaultContact(domainID id.DomainID, contactType ContactType, now time.Time) *PublicContact {
	return &PublicContact{
		ID:          id.ContactID(uuid.New()),
		DomainID:    domainID,
		RegistryID:  NewRegistryContactID(),
		Type:        contactType,
		Name:        defaultContactName,
		Org:         defaultContactOrg,
		Streets:     []string{defaultStreet},
		City:        defaultCity,
		Province:    defaultProvince,
		PostalCode:  defaultPostalCode,
		CountryCode: defaultCountryCode,
		Voice:       defaultContactVoice,
		Email:       defaultContactEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasDefaultEmail reports whether the contact still carries the registry
// default email. Security contacts with a custom email get different
// disclosure treatment.
func (c *PublicContact) HasDefaultEmail() bool {
	return c.Email == "" || c.Email == defaultContactEmail
}

// NewRegistryContactID generates a registry-unique EPP contact id.
// EPP contact ids are capped at 16 characters, so a uuid is truncated.
func NewRegistryContactID() string {
	u := uuid.NewString()
	return fmt.Sprintf("GOV-%.12s", u)
}
