package epp

import (
	"context"
	"errors"
	"time"
)

// DomainInfo is the registry's view of a domain, used to reconcile local
// state after ambiguous failures and to answer delegation questions.
type DomainInfo struct {
	Name           string
	Statuses       []string
	Registrant     string
	Contacts       []DomainContactRef
	Hosts          []string
	CreatedAt      *time.Time
	ExpirationDate *time.Time
}

// DomainContactRef associates a contact registry id with its wire role.
type DomainContactRef struct {
	Type string
	ID   string
}

// HasStatus reports whether the registry lists the given status value.
func (i *DomainInfo) HasStatus(status string) bool {
	for _, s := range i.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CreateDomain registers a domain with the given registrant contact.
// Idempotent at the application layer: an object-exists result is logged and
// swallowed, since a retry after an ambiguous failure is expected to hit it.
// Any other error propagates.
func (c *Client) CreateDomain(ctx context.Context, name, registrantID string) error {
	pw, err := GenerateAuthInfo()
	if err != nil {
		return err
	}
	cmd := &command{Create: &createCmd{Domain: &domainCreate{
		Name:       name,
		Period:     &period{Unit: "y", Value: 1},
		Registrant: registrantID,
		AuthInfo:   &authInfo{Password: pw},
	}}}
	_, err = c.command(ctx, "domain:create", cmd)
	if IsObjectExists(err) {
		c.logger.Warn("domain already exists at registry", "domain", name)
		return nil
	}
	return err
}

// DeleteDomain removes the domain from the registry. Not idempotent; every
// error propagates so deletion can never silently appear to succeed.
func (c *Client) DeleteDomain(ctx context.Context, name string) error {
	cmd := &command{Delete: &deleteCmd{Domain: &domainDelete{Name: name}}}
	_, err := c.command(ctx, "domain:delete", cmd)
	return err
}

// UpdateDomainHosts adds and removes nameserver delegations. With both lists
// empty it returns a success code without touching the wire. Registry errors
// are returned as their result code rather than raised, so the caller owns
// retry policy; connection errors still propagate.
func (c *Client) UpdateDomainHosts(ctx context.Context, name string, add, remove []string) (int, error) {
	if len(add) == 0 && len(remove) == 0 {
		return CodeCompletedSuccessfully, nil
	}

	upd := &domainUpdate{Name: name}
	if len(add) > 0 {
		upd.Add = &domainAddRem{NS: &nameserverSet{HostObjs: add}}
	}
	if len(remove) > 0 {
		upd.Rem = &domainAddRem{NS: &nameserverSet{HostObjs: remove}}
	}

	resp, err := c.command(ctx, "domain:update", &command{Update: &updateCmd{Domain: upd}})
	if err != nil {
		if re, ok := asRegistryError(err); ok {
			c.logger.Error("registry rejected host update",
				"domain", name, "code", re.Code, "note", re.Note)
			return re.Code, nil
		}
		return 0, err
	}
	return resp.code(), nil
}

// PlaceClientHold adds the clientHold status, stopping DNS resolution
// without deleting the domain.
func (c *Client) PlaceClientHold(ctx context.Context, name string) error {
	return c.updateDomainStatus(ctx, name, StatusClientHold, false)
}

// RemoveClientHold removes the clientHold status.
func (c *Client) RemoveClientHold(ctx context.Context, name string) error {
	return c.updateDomainStatus(ctx, name, StatusClientHold, true)
}

func (c *Client) updateDomainStatus(ctx context.Context, name, status string, remove bool) error {
	upd := &domainUpdate{Name: name}
	set := &domainAddRem{Statuses: []statusValue{{Value: status}}}
	if remove {
		upd.Rem = set
	} else {
		upd.Add = set
	}
	_, err := c.command(ctx, "domain:update", &command{Update: &updateCmd{Domain: upd}})
	return err
}

// IsDomainAvailable asks the registry whether the name can be registered.
// The registry's answer is returned directly; it is the basis for the public
// availability search.
func (c *Client) IsDomainAvailable(ctx context.Context, name string) (bool, error) {
	cmd := &command{Check: &checkCmd{Domain: &domainCheck{Names: []string{name}}}}
	resp, err := c.command(ctx, "domain:check", cmd)
	if err != nil {
		return false, err
	}
	if resp.ResData == nil || resp.ResData.DomainCheck == nil || len(resp.ResData.DomainCheck.Results) == 0 {
		return false, errMalformedResponse
	}
	return resp.ResData.DomainCheck.Results[0].Name.Available == 1, nil
}

// InfoDomain fetches the registry's authoritative view of a domain.
// An object-does-not-exist result propagates as a RegistryError; use
// DomainExists when absence is an expected answer.
func (c *Client) InfoDomain(ctx context.Context, name string) (*DomainInfo, error) {
	cmd := &command{Info: &infoCmd{Domain: &domainInfo{Name: name}}}
	resp, err := c.command(ctx, "domain:info", cmd)
	if err != nil {
		return nil, err
	}
	if resp.ResData == nil || resp.ResData.DomainInfo == nil {
		return nil, errMalformedResponse
	}
	return domainInfoFromWire(resp.ResData.DomainInfo), nil
}

// DomainExists reports whether the registry still knows the domain.
// An object-does-not-exist result (2303) or an info response with no data
// means "not present". Connection errors propagate rather than being read as
// absence, so an outage can never look like a deleted domain.
func (c *Client) DomainExists(ctx context.Context, name string) (bool, error) {
	info, err := c.InfoDomain(ctx, name)
	if err != nil {
		if IsConnectionError(err) {
			return false, err
		}
		if IsObjectDoesNotExist(err) || errors.Is(err, errMalformedResponse) {
			return false, nil
		}
		return false, err
	}
	return info != nil, nil
}

// IsPendingDelete reports whether the registry has the domain in
// pendingDelete. Absence counts as not pending; connection errors propagate.
func (c *Client) IsPendingDelete(ctx context.Context, name string) (bool, error) {
	info, err := c.InfoDomain(ctx, name)
	if err != nil {
		if IsObjectDoesNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.HasStatus(StatusPendingDelete), nil
}

// RenewDomain extends the registration period. The returned expiration date
// is the registry's confirmed value, never computed locally.
func (c *Client) RenewDomain(ctx context.Context, name string, curExpDate time.Time, years int) (time.Time, error) {
	cmd := &command{Renew: &renewCmd{Domain: &domainRenew{
		Name:       name,
		CurExpDate: curExpDate.Format("2006-01-02"),
		Period:     &period{Unit: "y", Value: years},
	}}}
	resp, err := c.command(ctx, "domain:renew", cmd)
	if err != nil {
		return time.Time{}, err
	}
	if resp.ResData == nil || resp.ResData.DomainRenew == nil {
		return time.Time{}, errMalformedResponse
	}
	return parseEPPTime(resp.ResData.DomainRenew.ExDate)
}

// UpdateDomainContact adds or removes one contact association on a domain.
// Both directions share this path; remove selects the rem list.
func (c *Client) UpdateDomainContact(ctx context.Context, name, registryID, wireType string, remove bool) error {
	upd := &domainUpdate{Name: name}
	set := &domainAddRem{Contacts: []domainContact{{Type: wireType, ID: registryID}}}
	if remove {
		upd.Rem = set
	} else {
		upd.Add = set
	}
	_, err := c.command(ctx, "domain:update", &command{Update: &updateCmd{Domain: upd}})
	return err
}

func domainInfoFromWire(d *domainInfData) *DomainInfo {
	info := &DomainInfo{
		Name:       d.Name,
		Registrant: d.Registrant,
		Hosts:      d.Hosts,
	}
	for _, s := range d.Statuses {
		info.Statuses = append(info.Statuses, s.Value)
	}
	for _, ct := range d.Contacts {
		info.Contacts = append(info.Contacts, DomainContactRef{Type: ct.Type, ID: ct.ID})
	}
	if d.NS != nil {
		info.Hosts = append(info.Hosts, d.NS.HostObjs...)
	}
	if d.CrDate != "" {
		if t, err := parseEPPTime(d.CrDate); err == nil {
			info.CreatedAt = &t
		}
	}
	if d.ExDate != "" {
		if t, err := parseEPPTime(d.ExDate); err == nil {
			info.ExpirationDate = &t
		}
	}
	return info
}

func asRegistryError(err error) (*RegistryError, bool) {
	var re *RegistryError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
