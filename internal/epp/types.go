package epp

import (
	"crypto/rand"
	"math/big"
)

// ContactType values as they appear on the wire for domain-contact
// associations (RFC 5731 uses admin/tech/billing; the security role is
// carried as tech per registry policy, with the role recorded locally).
const (
	WireContactAdmin = "admin"
	WireContactTech  = "tech"
)

// Contact is the registry-facing contact representation. Services map their
// own contact records into this explicitly, field by field.
type Contact struct {
	RegistryID  string
	Name        string
	Org         string
	Streets     []string
	City        string
	Province    string
	PostalCode  string
	CountryCode string
	Voice       string
	Fax         string
	Email       string
	AuthInfo    string
}

// Disclose lists the public-WHOIS fields the registrar requests be
// disclosed for a contact. Fields not requested follow server policy.
type Disclose struct {
	Name  bool
	Org   bool
	Addr  bool
	Voice bool
	Fax   bool
	Email bool
}

func (d Disclose) toWire() *discloseEl {
	el := &discloseEl{Flag: 1}
	if d.Name {
		el.Name = &discloseItem{Type: "loc"}
	}
	if d.Org {
		el.Org = &discloseItem{Type: "loc"}
	}
	if d.Addr {
		el.Addr = &discloseItem{Type: "loc"}
	}
	if d.Voice {
		el.Voice = &struct{}{}
	}
	if d.Fax {
		el.Fax = &struct{}{}
	}
	if d.Email {
		el.Email = &struct{}{}
	}
	return el
}

// Host is a nameserver object at the registry. IPs are set only for glue
// records; the registry rejects addresses on out-of-zone hosts.
type Host struct {
	Name string
	IPs  []string
}

const authInfoRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"
const authInfoLength = 16

// GenerateAuthInfo produces a fresh per-object auth-info secret. Every
// domain and contact gets its own; secrets are never reused or hardcoded.
func GenerateAuthInfo() (string, error) {
	buf := make([]byte, authInfoLength)
	max := big.NewInt(int64(len(authInfoRunes)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = authInfoRunes[n.Int64()]
	}
	return string(buf), nil
}
