package models

import (
	"net"
	"strings"

	"registrar/pkg/derrors"
)

// Host is a nameserver associated with a domain. A host is a glue record
// only when it is a subdomain of the domain it serves; glue records must
// carry addresses and out-of-zone hosts must not.
type Host struct {
	Name string   `json:"name"`
	IPs  []string `json:"ips,omitempty"`
}

// IsGlue reports whether the host sits inside the given domain's zone.
func (h Host) IsGlue(domainName string) bool {
	host := strings.ToLower(strings.TrimSuffix(h.Name, "."))
	domainName = strings.ToLower(strings.TrimSuffix(domainName, "."))
	return strings.HasSuffix(host, "."+domainName)
}

// Validate enforces the glue invariant for a host serving domainName.
func (h Host) Validate(domainName string) error {
	if h.Name == "" {
		return derrors.New(derrors.CodeInvalidInput, "nameserver name is required")
	}
	for _, ip := range h.IPs {
		if net.ParseIP(ip) == nil {
			return derrors.Newf(derrors.CodeInvalidInput, "invalid nameserver address %q", ip)
		}
	}
	if h.IsGlue(domainName) {
		if len(h.IPs) == 0 {
			return derrors.Newf(derrors.CodeInvalidInput,
				"glue record %s requires at least one address", h.Name)
		}
		return nil
	}
	if len(h.IPs) > 0 {
		return derrors.Newf(derrors.CodeInvalidInput,
			"host %s is outside %s and must not carry addresses", h.Name, domainName)
	}
	return nil
}
