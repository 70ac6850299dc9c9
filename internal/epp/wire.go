package epp

import (
	"encoding/xml"
	"fmt"
	"time"
)

// XML namespace URIs (RFC 5730-5733). encoding/xml emits object payloads in
// default-namespace form (<create xmlns="...domain-1.0">), which is
// equivalent to the prefixed form registries themselves send.
const (
	nsEPP     = "urn:ietf:params:xml:ns:epp-1.0"
	nsDomain  = "urn:ietf:params:xml:ns:domain-1.0"
	nsContact = "urn:ietf:params:xml:ns:contact-1.0"
	nsHost    = "urn:ietf:params:xml:ns:host-1.0"
)

// message is the top-level EPP element for both directions.
type message struct {
	XMLName  xml.Name  `xml:"urn:ietf:params:xml:ns:epp-1.0 epp"`
	Command  *command  `xml:"command"`
	Response *response `xml:"response"`
	Greeting *greeting `xml:"greeting"`
}

type greeting struct {
	ServerID   string `xml:"svID"`
	ServerDate string `xml:"svDate"`
}

type command struct {
	Login  *loginCmd  `xml:"login"`
	Logout *struct{}  `xml:"logout"`
	Check  *checkCmd  `xml:"check"`
	Create *createCmd `xml:"create"`
	Delete *deleteCmd `xml:"delete"`
	Info   *infoCmd   `xml:"info"`
	Renew  *renewCmd  `xml:"renew"`
	Update *updateCmd `xml:"update"`
	ClTRID string     `xml:"clTRID,omitempty"`
}

type loginCmd struct {
	ClientID string       `xml:"clID"`
	Password string       `xml:"pw"`
	Options  loginOptions `xml:"options"`
	Services loginSvcs    `xml:"svcs"`
}

type loginOptions struct {
	Version string `xml:"version"`
	Lang    string `xml:"lang"`
}

type loginSvcs struct {
	ObjURIs []string `xml:"objURI"`
}

// Per-verb payload wrappers. Exactly one object mapping is set per command.
type checkCmd struct {
	Domain *domainCheck `xml:"urn:ietf:params:xml:ns:domain-1.0 check"`
}

type createCmd struct {
	Domain  *domainCreate  `xml:"urn:ietf:params:xml:ns:domain-1.0 create"`
	Contact *contactCreate `xml:"urn:ietf:params:xml:ns:contact-1.0 create"`
	Host    *hostCreate    `xml:"urn:ietf:params:xml:ns:host-1.0 create"`
}

type deleteCmd struct {
	Domain  *domainDelete  `xml:"urn:ietf:params:xml:ns:domain-1.0 delete"`
	Contact *contactDelete `xml:"urn:ietf:params:xml:ns:contact-1.0 delete"`
	Host    *hostDelete    `xml:"urn:ietf:params:xml:ns:host-1.0 delete"`
}

type infoCmd struct {
	Domain  *domainInfo  `xml:"urn:ietf:params:xml:ns:domain-1.0 info"`
	Contact *contactInfo `xml:"urn:ietf:params:xml:ns:contact-1.0 info"`
	Host    *hostInfo    `xml:"urn:ietf:params:xml:ns:host-1.0 info"`
}

type renewCmd struct {
	Domain *domainRenew `xml:"urn:ietf:params:xml:ns:domain-1.0 renew"`
}

type updateCmd struct {
	Domain  *domainUpdate  `xml:"urn:ietf:params:xml:ns:domain-1.0 update"`
	Contact *contactUpdate `xml:"urn:ietf:params:xml:ns:contact-1.0 update"`
	Host    *hostUpdate    `xml:"urn:ietf:params:xml:ns:host-1.0 update"`
}

// -----------------------------------------------------------------------------
// Domain object mapping (RFC 5731)
// -----------------------------------------------------------------------------

type domainCheck struct {
	Names []string `xml:"name"`
}

type domainCreate struct {
	Name       string          `xml:"name"`
	Period     *period         `xml:"period"`
	NS         *nameserverSet  `xml:"ns"`
	Registrant string          `xml:"registrant,omitempty"`
	Contacts   []domainContact `xml:"contact"`
	AuthInfo   *authInfo       `xml:"authInfo"`
}

type domainDelete struct {
	Name string `xml:"name"`
}

type domainInfo struct {
	Name string `xml:"name"`
}

type domainRenew struct {
	Name       string  `xml:"name"`
	CurExpDate string  `xml:"curExpDate"`
	Period     *period `xml:"period"`
}

type domainUpdate struct {
	Name string        `xml:"name"`
	Add  *domainAddRem `xml:"add"`
	Rem  *domainAddRem `xml:"rem"`
	Chg  *domainChange `xml:"chg"`
}

type domainAddRem struct {
	NS       *nameserverSet  `xml:"ns"`
	Contacts []domainContact `xml:"contact"`
	Statuses []statusValue   `xml:"status"`
}

type domainChange struct {
	Registrant string    `xml:"registrant,omitempty"`
	AuthInfo   *authInfo `xml:"authInfo"`
}

type period struct {
	Unit  string `xml:"unit,attr"`
	Value int    `xml:",chardata"`
}

type nameserverSet struct {
	HostObjs []string `xml:"hostObj"`
}

type domainContact struct {
	Type string `xml:"type,attr"`
	ID   string `xml:",chardata"`
}

type statusValue struct {
	Value string `xml:"s,attr"`
}

type authInfo struct {
	Password string `xml:"pw"`
}

// -----------------------------------------------------------------------------
// Contact object mapping (RFC 5733)
// -----------------------------------------------------------------------------

type contactCreate struct {
	ID         string      `xml:"id"`
	PostalInfo postalInfo  `xml:"postalInfo"`
	Voice      string      `xml:"voice,omitempty"`
	Fax        string      `xml:"fax,omitempty"`
	Email      string      `xml:"email"`
	AuthInfo   *authInfo   `xml:"authInfo"`
	Disclose   *discloseEl `xml:"disclose"`
}

type contactDelete struct {
	ID string `xml:"id"`
}

type contactInfo struct {
	ID string `xml:"id"`
}

type contactUpdate struct {
	ID  string         `xml:"id"`
	Chg *contactChange `xml:"chg"`
}

type contactChange struct {
	PostalInfo *postalInfo `xml:"postalInfo"`
	Voice      string      `xml:"voice,omitempty"`
	Fax        string      `xml:"fax,omitempty"`
	Email      string      `xml:"email,omitempty"`
	AuthInfo   *authInfo   `xml:"authInfo"`
	Disclose   *discloseEl `xml:"disclose"`
}

type postalInfo struct {
	Type string      `xml:"type,attr"`
	Name string      `xml:"name"`
	Org  string      `xml:"org,omitempty"`
	Addr *postalAddr `xml:"addr"`
}

type postalAddr struct {
	Streets     []string `xml:"street"`
	City        string   `xml:"city"`
	Province    string   `xml:"sp,omitempty"`
	PostalCode  string   `xml:"pc,omitempty"`
	CountryCode string   `xml:"cc"`
}

// discloseEl carries WHOIS disclosure preferences (RFC 5733 §2.9).
// flag="1" lists fields the client requests be disclosed; everything not
// listed follows server policy.
type discloseEl struct {
	Flag  int           `xml:"flag,attr"`
	Name  *discloseItem `xml:"name"`
	Org   *discloseItem `xml:"org"`
	Addr  *discloseItem `xml:"addr"`
	Voice *struct{}     `xml:"voice"`
	Fax   *struct{}     `xml:"fax"`
	Email *struct{}     `xml:"email"`
}

type discloseItem struct {
	Type string `xml:"type,attr,omitempty"`
}

// -----------------------------------------------------------------------------
// Host object mapping (RFC 5732)
// -----------------------------------------------------------------------------

type hostCreate struct {
	Name  string     `xml:"name"`
	Addrs []hostAddr `xml:"addr"`
}

type hostDelete struct {
	Name string `xml:"name"`
}

type hostInfo struct {
	Name string `xml:"name"`
}

type hostUpdate struct {
	Name string      `xml:"name"`
	Add  *hostAddRem `xml:"add"`
	Rem  *hostAddRem `xml:"rem"`
}

type hostAddRem struct {
	Addrs    []hostAddr    `xml:"addr"`
	Statuses []statusValue `xml:"status"`
}

type hostAddr struct {
	Version string `xml:"ip,attr,omitempty"`
	IP      string `xml:",chardata"`
}

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

type response struct {
	Results []result `xml:"result"`
	ResData *resData `xml:"resData"`
	TrID    trID     `xml:"trID"`
}

type result struct {
	Code      int        `xml:"code,attr"`
	Msg       string     `xml:"msg"`
	ExtValues []extValue `xml:"extValue"`
}

type extValue struct {
	Reason string `xml:"reason"`
}

// note flattens a result's message and extension reasons into the diagnostic
// string carried by RegistryError.
func (r result) note() string {
	note := r.Msg
	for _, ev := range r.ExtValues {
		if ev.Reason != "" {
			note += "; " + ev.Reason
		}
	}
	return note
}

type trID struct {
	ClTRID string `xml:"clTRID"`
	SvTRID string `xml:"svTRID"`
}

type resData struct {
	DomainCheck   *domainChkData  `xml:"urn:ietf:params:xml:ns:domain-1.0 chkData"`
	DomainCreate  *domainCreData  `xml:"urn:ietf:params:xml:ns:domain-1.0 creData"`
	DomainInfo    *domainInfData  `xml:"urn:ietf:params:xml:ns:domain-1.0 infData"`
	DomainRenew   *domainRenData  `xml:"urn:ietf:params:xml:ns:domain-1.0 renData"`
	ContactCreate *contactCreData `xml:"urn:ietf:params:xml:ns:contact-1.0 creData"`
	ContactInfo   *contactInfData `xml:"urn:ietf:params:xml:ns:contact-1.0 infData"`
	HostCreate    *hostCreData    `xml:"urn:ietf:params:xml:ns:host-1.0 creData"`
	HostInfo      *hostInfData    `xml:"urn:ietf:params:xml:ns:host-1.0 infData"`
}

type domainChkData struct {
	Results []domainCheckResult `xml:"cd"`
}

type domainCheckResult struct {
	Name   checkedName `xml:"name"`
	Reason string      `xml:"reason"`
}

type checkedName struct {
	Available int    `xml:"avail,attr"`
	Value     string `xml:",chardata"`
}

type domainCreData struct {
	Name   string `xml:"name"`
	CrDate string `xml:"crDate"`
	ExDate string `xml:"exDate"`
}

type domainInfData struct {
	Name       string          `xml:"name"`
	Roid       string          `xml:"roid"`
	Statuses   []statusValue   `xml:"status"`
	Registrant string          `xml:"registrant"`
	Contacts   []domainContact `xml:"contact"`
	NS         *nameserverSet  `xml:"ns"`
	Hosts      []string        `xml:"host"`
	CrDate     string          `xml:"crDate"`
	UpDate     string          `xml:"upDate"`
	ExDate     string          `xml:"exDate"`
}

func (d *domainInfData) hasStatus(status string) bool {
	for _, s := range d.Statuses {
		if s.Value == status {
			return true
		}
	}
	return false
}

type domainRenData struct {
	Name   string `xml:"name"`
	ExDate string `xml:"exDate"`
}

type contactCreData struct {
	ID     string `xml:"id"`
	CrDate string `xml:"crDate"`
}

type contactInfData struct {
	ID         string      `xml:"id"`
	Roid       string      `xml:"roid"`
	PostalInfo *postalInfo `xml:"postalInfo"`
	Voice      string      `xml:"voice"`
	Fax        string      `xml:"fax"`
	Email      string      `xml:"email"`
}

type hostCreData struct {
	Name   string `xml:"name"`
	CrDate string `xml:"crDate"`
}

type hostInfData struct {
	Name     string        `xml:"name"`
	Roid     string        `xml:"roid"`
	Statuses []statusValue `xml:"status"`
	Addrs    []hostAddr    `xml:"addr"`
}

// marshalCommand renders a command message with the XML declaration the
// protocol requires.
func marshalCommand(cmd *command) ([]byte, error) {
	body, err := xml.Marshal(&message{Command: cmd})
	if err != nil {
		return nil, fmt.Errorf("marshal epp command: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func unmarshalMessage(raw []byte) (*message, error) {
	var msg message
	if err := xml.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal epp message: %w", err)
	}
	return &msg, nil
}

// parseEPPTime parses the dateTime values registries return. Some servers
// send date-only expiration values, so both forms are accepted.
func parseEPPTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse epp timestamp %q: %w", s, err)
	}
	return t, nil
}
