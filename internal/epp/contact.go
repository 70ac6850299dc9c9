package epp

import "context"

// CreateContact provisions a contact at the registry with the given disclose
// preferences. An object-exists result is a warning, not an error: retries
// after ambiguous failures are expected to collide with their own first
// attempt.
func (c *Client) CreateContact(ctx context.Context, contact Contact, disclose Disclose) error {
	cmd := &command{Create: &createCmd{Contact: &contactCreate{
		ID:         contact.RegistryID,
		PostalInfo: postalInfoFromContact(contact),
		Voice:      contact.Voice,
		Fax:        contact.Fax,
		Email:      contact.Email,
		AuthInfo:   &authInfo{Password: contact.AuthInfo},
		Disclose:   disclose.toWire(),
	}}}
	_, err := c.command(ctx, "contact:create", cmd)
	if IsObjectExists(err) {
		c.logger.Warn("contact already exists at registry", "contact", contact.RegistryID)
		return nil
	}
	return err
}

// UpdateContact replaces the registry copy of a contact's mutable fields.
// Disclose preferences are recomputed by the caller on every mutation so the
// local and registry copies converge.
func (c *Client) UpdateContact(ctx context.Context, contact Contact, disclose Disclose) error {
	pi := postalInfoFromContact(contact)
	cmd := &command{Update: &updateCmd{Contact: &contactUpdate{
		ID: contact.RegistryID,
		Chg: &contactChange{
			PostalInfo: &pi,
			Voice:      contact.Voice,
			Fax:        contact.Fax,
			Email:      contact.Email,
			Disclose:   disclose.toWire(),
		},
	}}}
	_, err := c.command(ctx, "contact:update", cmd)
	return err
}

// DeleteContact removes a contact object from the registry.
func (c *Client) DeleteContact(ctx context.Context, registryID string) error {
	cmd := &command{Delete: &deleteCmd{Contact: &contactDelete{ID: registryID}}}
	_, err := c.command(ctx, "contact:delete", cmd)
	return err
}

// FetchContactInfo retrieves the registry's copy of a contact.
func (c *Client) FetchContactInfo(ctx context.Context, registryID string) (*Contact, error) {
	cmd := &command{Info: &infoCmd{Contact: &contactInfo{ID: registryID}}}
	resp, err := c.command(ctx, "contact:info", cmd)
	if err != nil {
		return nil, err
	}
	if resp.ResData == nil || resp.ResData.ContactInfo == nil {
		return nil, errMalformedResponse
	}
	return contactFromWire(resp.ResData.ContactInfo), nil
}

func postalInfoFromContact(contact Contact) postalInfo {
	return postalInfo{
		Type: "loc",
		Name: contact.Name,
		Org:  contact.Org,
		Addr: &postalAddr{
			Streets:     contact.Streets,
			City:        contact.City,
			Province:    contact.Province,
			PostalCode:  contact.PostalCode,
			CountryCode: contact.CountryCode,
		},
	}
}

func contactFromWire(d *contactInfData) *Contact {
	contact := &Contact{
		RegistryID: d.ID,
		Voice:      d.Voice,
		Fax:        d.Fax,
		Email:      d.Email,
	}
	if pi := d.PostalInfo; pi != nil {
		contact.Name = pi.Name
		contact.Org = pi.Org
		if pi.Addr != nil {
			contact.Streets = pi.Addr.Streets
			contact.City = pi.Addr.City
			contact.Province = pi.Addr.Province
			contact.PostalCode = pi.Addr.PostalCode
			contact.CountryCode = pi.Addr.CountryCode
		}
	}
	return contact
}
