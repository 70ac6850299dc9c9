// Package privacy computes which contact fields are disclosed to public
// WHOIS. The policy is a pure function of the contact: same inputs, same
// flags, every time. The registry client attaches the result to every
// contact create and update so the registry copy always reflects current
// policy.
package privacy

import "registrar/internal/domains/models"

// Settings lists the fields to disclose. Zero value discloses nothing.
type Settings struct {
	Name  bool
	Org   bool
	Addr  bool
	Voice bool
	Fax   bool
	Email bool
}

// For computes disclosure for a contact.
//
// Policy: everything is withheld by default. A registrant represents a
// public organization, so its name and org are disclosed. A security
// contact that has published its own address (a non-default email) is
// disclosed so the public can report incidents; a security contact still on
// registry defaults is not, because the default mailbox is already public.
func For(contact *models.PublicContact) Settings {
	switch contact.Type {
	case models.ContactRegistrant:
		return Settings{Name: true, Org: true}
	case models.ContactSecurity:
		if !contact.HasDefaultEmail() {
			return Settings{Email: true}
		}
		return Settings{}
	default:
		return Settings{}
	}
}
