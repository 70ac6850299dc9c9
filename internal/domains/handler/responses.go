package handler

import (
	"time"

	"registrar/internal/domains/dnscheck"
	"registrar/internal/domains/models"
)

// DomainResponse is the HTTP shape of a domain row.
type DomainResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	State          string     `json:"state"`
	FirstReady     *time.Time `json:"first_ready,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FromDomain converts a domain row to its HTTP shape.
func FromDomain(d *models.Domain) *DomainResponse {
	return &DomainResponse{
		ID:             d.ID.String(),
		Name:           d.Name,
		State:          string(d.State),
		FirstReady:     d.FirstReady,
		ExpirationDate: d.ExpirationDate,
		DeletedAt:      d.DeletedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// AvailabilityResponse is the HTTP shape of an availability answer.
type AvailabilityResponse struct {
	Domain    string `json:"domain"`
	Available bool   `json:"available"`
}

// ContactResponse is the HTTP shape of a public contact.
type ContactResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"contact_type"`
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
}

// FromContact converts a contact row to its HTTP shape. The registry id is
// deliberately omitted; it is an EPP credential handle, not public data.
func FromContact(c *models.PublicContact) *ContactResponse {
	return &ContactResponse{
		ID:          c.ID.String(),
		Type:        string(c.Type),
		Name:        c.Name,
		Org:         c.Org,
		Streets:     c.Streets,
		City:        c.City,
		Province:    c.Province,
		PostalCode:  c.PostalCode,
		CountryCode: c.CountryCode,
		Voice:       c.Voice,
		Fax:         c.Fax,
		Email:       c.Email,
	}
}

// NameserversResponse is the HTTP shape of a delegation.
type NameserversResponse struct {
	Hosts []HostRequest `json:"hosts"`
}

// DNSCheckResponse reports per-nameserver probe outcomes.
type DNSCheckResponse struct {
	Results []dnscheck.Result `json:"results"`
}
