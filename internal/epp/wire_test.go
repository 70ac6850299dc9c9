package epp

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte(`<?xml version="1.0"?><epp/>`)

	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, payload))

	// RFC 5734: length header counts itself.
	assert.Equal(t, len(payload)+4, buf.Len())

	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsBadLength(t *testing.T) {
	// Header claims 2 bytes total, below the 4-byte minimum.
	_, err := readFrame(bytes.NewReader([]byte{0, 0, 0, 2}))
	require.Error(t, err)
}

func TestMarshalDomainCreate(t *testing.T) {
	payload, err := marshalCommand(&command{
		Create: &createCmd{Domain: &domainCreate{
			Name:       "example.gov",
			Period:     &period{Unit: "y", Value: 1},
			Registrant: "REG-1",
			AuthInfo:   &authInfo{Password: "secret"},
		}},
		ClTRID: "test-1",
	})
	require.NoError(t, err)

	xml := string(payload)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, "urn:ietf:params:xml:ns:epp-1.0")
	assert.Contains(t, xml, "urn:ietf:params:xml:ns:domain-1.0")
	assert.Contains(t, xml, "<name>example.gov</name>")
	assert.Contains(t, xml, `unit="y"`)
	assert.Contains(t, xml, "<registrant>REG-1</registrant>")
	assert.Contains(t, xml, "<clTRID>test-1</clTRID>")
}

func TestUnmarshalResponse(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
  <response>
    <result code="2303">
      <msg>Object does not exist</msg>
      <extValue><reason>domain name not found</reason></extValue>
    </result>
    <trID><clTRID>abc</clTRID><svTRID>srv-1</svTRID></trID>
  </response>
</epp>`

	msg, err := unmarshalMessage([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, msg.Response)
	require.Len(t, msg.Response.Results, 1)

	res := msg.Response.Results[0]
	assert.Equal(t, CodeObjectDoesNotExist, res.Code)
	assert.Equal(t, "Object does not exist; domain name not found", res.note())
	assert.Equal(t, "srv-1", msg.Response.TrID.SvTRID)
}

func TestUnmarshalDomainInfoResponse(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
  <response>
    <result code="1000"><msg>Command completed successfully</msg></result>
    <resData>
      <domain:infData xmlns:domain="urn:ietf:params:xml:ns:domain-1.0">
        <domain:name>example.gov</domain:name>
        <domain:status s="clientHold"/>
        <domain:registrant>REG-1</domain:registrant>
        <domain:contact type="tech">SEC-1</domain:contact>
        <domain:ns><domain:hostObj>ns1.example.gov</domain:hostObj></domain:ns>
        <domain:exDate>2027-01-02T03:04:05Z</domain:exDate>
      </domain:infData>
    </resData>
    <trID><svTRID>srv-2</svTRID></trID>
  </response>
</epp>`

	msg, err := unmarshalMessage([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, msg.Response.ResData)
	require.NotNil(t, msg.Response.ResData.DomainInfo)

	info := domainInfoFromWire(msg.Response.ResData.DomainInfo)
	assert.Equal(t, "example.gov", info.Name)
	assert.True(t, info.HasStatus(StatusClientHold))
	assert.Equal(t, "REG-1", info.Registrant)
	assert.Equal(t, []string{"ns1.example.gov"}, info.Hosts)
	require.NotNil(t, info.ExpirationDate)
	assert.Equal(t, 2027, info.ExpirationDate.Year())
}

func TestParseEPPTime(t *testing.T) {
	full, err := parseEPPTime("2026-08-30T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), full)

	dateOnly, err := parseEPPTime("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), dateOnly)

	_, err = parseEPPTime("not-a-date")
	require.Error(t, err)
}

func TestGenerateAuthInfo(t *testing.T) {
	a, err := GenerateAuthInfo()
	require.NoError(t, err)
	b, err := GenerateAuthInfo()
	require.NoError(t, err)

	assert.Len(t, a, authInfoLength)
	assert.NotEqual(t, a, b, "secrets must be generated per object")
}
