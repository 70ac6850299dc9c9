package handler

import (
	"registrar/internal/domains/models"
	"registrar/internal/domains/service"
	"registrar/pkg/derrors"
)

// TransitionRequest is the body for POST /domains/{name}/transitions.
type TransitionRequest struct {
	Event     string `json:"event"`
	IgnoreEPP bool   `json:"ignore_epp,omitempty"`
}

func (r TransitionRequest) Validate() error {
	if r.Event == "" {
		return derrors.New(derrors.CodeBadRequest, "event is required")
	}
	return nil
}

func (r TransitionRequest) ParsedEvent() service.Event {
	return service.Event(r.Event)
}

// ContactRequest is the body for PUT /domains/{name}/contacts/{type}.
type ContactRequest struct {
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

func (r ContactRequest) Validate() error {
	if r.Name == "" {
		return derrors.New(derrors.CodeBadRequest, "contact name is required")
	}
	if r.Email == "" {
		return derrors.New(derrors.CodeBadRequest, "contact email is required")
	}
	return nil
}

func (r ContactRequest) ToModel() *models.PublicContact {
	return &models.PublicContact{
		Name:        r.Name,
		Org:         r.Org,
		Streets:     r.Streets,
		City:        r.City,
		Province:    r.Province,
		PostalCode:  r.PostalCode,
		CountryCode: r.CountryCode,
		Voice:       r.Voice,
		Fax:         r.Fax,
		Email:       r.Email,
	}
}

// NameserversRequest is the body for PUT /domains/{name}/nameservers.
type NameserversRequest struct {
	Hosts []HostRequest `json:"hosts"`
}

// HostRequest is one nameserver entry.
type HostRequest struct {
	Name string   `json:"name"`
	IPs  []string `json:"ips,omitempty"`
}

func (r NameserversRequest) ToModel() []models.Host {
	hosts := make([]models.Host, 0, len(r.Hosts))
	for _, h := range r.Hosts {
		hosts = append(hosts, models.Host{Name: h.Name, IPs: h.IPs})
	}
	return hosts
}

// RenewRequest is the body for POST /domains/{name}/renew.
type RenewRequest struct {
	Years int `json:"years"`
}

func (r RenewRequest) Validate() error {
	if r.Years < 1 || r.Years > 10 {
		return derrors.New(derrors.CodeBadRequest, "years must be between 1 and 10")
	}
	return nil
}
