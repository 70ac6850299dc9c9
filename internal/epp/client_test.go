package epp

import (
	"context"
	"encoding/xml"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"registrar/internal/platform/config"
)

// fakeRegistry serves scripted EPP responses over an in-memory pipe.
// It answers the greeting and login itself; everything else goes through the
// configured handler.
type fakeRegistry struct {
	handler   func(cmd *command) *response
	dialCount atomic.Int32
	cmdCount  atomic.Int32
}

func (f *fakeRegistry) dialer() Dialer {
	return func(_ context.Context) (net.Conn, error) {
		f.dialCount.Add(1)
		client, server := net.Pipe()
		go f.serve(server)
		return client, nil
	}
}

func (f *fakeRegistry) serve(conn net.Conn) {
	defer conn.Close()

	greeting, _ := xml.Marshal(&message{Greeting: &greeting{ServerID: "fake-registry"}})
	if err := writeFrame(conn, greeting); err != nil {
		return
	}

	for {
		raw, err := readFrame(conn)
		if err != nil {
			return
		}
		var msg message
		if err := xml.Unmarshal(raw, &msg); err != nil || msg.Command == nil {
			return
		}

		var resp *response
		switch {
		case msg.Command.Login != nil:
			resp = okResponse()
		case msg.Command.Logout != nil:
			resp = &response{Results: []result{{Code: CodeCompletedEndingSession, Msg: "Command completed successfully; ending session"}}}
		default:
			f.cmdCount.Add(1)
			resp = f.handler(msg.Command)
		}

		out, _ := xml.Marshal(&message{Response: resp})
		if err := writeFrame(conn, out); err != nil {
			return
		}
		if msg.Command.Logout != nil {
			return
		}
	}
}

func okResponse() *response {
	return &response{Results: []result{{Code: CodeCompletedSuccessfully, Msg: "Command completed successfully"}}}
}

func errResponse(code int, msg string) *response {
	return &response{Results: []result{{Code: code, Msg: msg}}}
}

type ClientSuite struct {
	suite.Suite
	registry *fakeRegistry
	client   *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.registry = &fakeRegistry{handler: func(*command) *response { return okResponse() }}
	s.client = New(config.EPPConfig{
		LoginID:        "registrar",
		LoginPassword:  "test-password",
		CommandTimeout: 2 * time.Second,
	}, s.registry.dialer())
}

func (s *ClientSuite) TearDownTest() {
	_ = s.client.Close(context.Background())
}

func (s *ClientSuite) TestCreateDomainSwallowsObjectExists() {
	ctx := context.Background()

	s.Run("first create succeeds", func() {
		s.NoError(s.client.CreateDomain(ctx, "example.gov", "REG-1"))
	})

	s.Run("duplicate create is not an error", func() {
		s.registry.handler = func(*command) *response {
			return errResponse(CodeObjectExists, "Object exists")
		}
		s.NoError(s.client.CreateDomain(ctx, "example.gov", "REG-1"))
	})

	s.Run("other registry errors propagate", func() {
		s.registry.handler = func(*command) *response {
			return errResponse(CodeCommandFailed, "Command failed")
		}
		err := s.client.CreateDomain(ctx, "example.gov", "REG-1")
		s.Error(err)
		re, ok := asRegistryError(err)
		s.True(ok)
		s.Equal(CodeCommandFailed, re.Code)
	})
}

func (s *ClientSuite) TestUpdateDomainHosts() {
	ctx := context.Background()

	s.Run("empty add and remove lists never touch the wire", func() {
		code, err := s.client.UpdateDomainHosts(ctx, "example.gov", nil, nil)
		s.NoError(err)
		s.Equal(CodeCompletedSuccessfully, code)
		s.Equal(int32(0), s.registry.dialCount.Load())
	})

	s.Run("returns success code for a real update", func() {
		code, err := s.client.UpdateDomainHosts(ctx, "example.gov",
			[]string{"ns1.example.gov"}, []string{"ns9.example.gov"})
		s.NoError(err)
		s.Equal(CodeCompletedSuccessfully, code)
	})

	s.Run("registry errors come back as the code, not an error", func() {
		s.registry.handler = func(*command) *response {
			return errResponse(CodeStatusProhibits, "Object status prohibits operation")
		}
		code, err := s.client.UpdateDomainHosts(ctx, "example.gov", []string{"ns1.example.gov"}, nil)
		s.NoError(err)
		s.Equal(CodeStatusProhibits, code)
	})
}

func (s *ClientSuite) TestDomainExists() {
	ctx := context.Background()

	s.Run("2303 means absent, not an error", func() {
		s.registry.handler = func(*command) *response {
			return errResponse(CodeObjectDoesNotExist, "Object does not exist")
		}
		exists, err := s.client.DomainExists(ctx, "ghost.gov")
		s.NoError(err)
		s.False(exists)
	})

	s.Run("info data means present", func() {
		s.registry.handler = func(*command) *response {
			resp := okResponse()
			resp.ResData = &resData{DomainInfo: &domainInfData{
				Name:     "example.gov",
				Statuses: []statusValue{{Value: StatusOK}},
			}}
			return resp
		}
		exists, err := s.client.DomainExists(ctx, "example.gov")
		s.NoError(err)
		s.True(exists)
	})

	s.Run("connection failures propagate instead of reading as absence", func() {
		broken := New(config.EPPConfig{CommandTimeout: time.Second}, func(context.Context) (net.Conn, error) {
			return nil, context.DeadlineExceeded
		})
		_, err := broken.DomainExists(ctx, "example.gov")
		s.Error(err)
		s.True(IsConnectionError(err))
	})
}

func (s *ClientSuite) TestIsPendingDelete() {
	ctx := context.Background()

	s.registry.handler = func(*command) *response {
		resp := okResponse()
		resp.ResData = &resData{DomainInfo: &domainInfData{
			Name:     "example.gov",
			Statuses: []statusValue{{Value: StatusPendingDelete}},
		}}
		return resp
	}
	pending, err := s.client.IsPendingDelete(ctx, "example.gov")
	s.NoError(err)
	s.True(pending)
}

func (s *ClientSuite) TestIsDomainAvailable() {
	ctx := context.Background()

	s.registry.handler = func(cmd *command) *response {
		s.Require().NotNil(cmd.Check)
		s.Require().NotNil(cmd.Check.Domain)
		resp := okResponse()
		avail := 0
		if cmd.Check.Domain.Names[0] == "open.gov" {
			avail = 1
		}
		resp.ResData = &resData{DomainCheck: &domainChkData{Results: []domainCheckResult{
			{Name: checkedName{Available: avail, Value: cmd.Check.Domain.Names[0]}},
		}}}
		return resp
	}

	available, err := s.client.IsDomainAvailable(ctx, "open.gov")
	s.NoError(err)
	s.True(available)

	available, err = s.client.IsDomainAvailable(ctx, "taken.gov")
	s.NoError(err)
	s.False(available)
}

func (s *ClientSuite) TestRenewDomainReturnsRegistryExpiration() {
	ctx := context.Background()

	s.registry.handler = func(cmd *command) *response {
		s.Require().NotNil(cmd.Renew)
		resp := okResponse()
		resp.ResData = &resData{DomainRenew: &domainRenData{
			Name:   "example.gov",
			ExDate: "2027-03-15T00:00:00Z",
		}}
		return resp
	}

	cur := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	exp, err := s.client.RenewDomain(ctx, "example.gov", cur, 1)
	s.NoError(err)
	s.Equal(time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC), exp)
}

func (s *ClientSuite) TestClientHoldRoundTrip() {
	ctx := context.Background()

	var seen []*domainUpdate
	s.registry.handler = func(cmd *command) *response {
		if cmd.Update != nil && cmd.Update.Domain != nil {
			seen = append(seen, cmd.Update.Domain)
		}
		return okResponse()
	}

	s.Require().NoError(s.client.PlaceClientHold(ctx, "example.gov"))
	s.Require().NoError(s.client.RemoveClientHold(ctx, "example.gov"))

	s.Require().Len(seen, 2)
	s.Require().NotNil(seen[0].Add)
	s.Equal(StatusClientHold, seen[0].Add.Statuses[0].Value)
	s.Require().NotNil(seen[1].Rem)
	s.Equal(StatusClientHold, seen[1].Rem.Statuses[0].Value)
}

func (s *ClientSuite) TestCreateHostReturnsObjectExistsCode() {
	ctx := context.Background()

	s.registry.handler = func(*command) *response {
		return errResponse(CodeObjectExists, "Object exists")
	}
	code, err := s.client.CreateHost(ctx, Host{Name: "ns1.example.gov", IPs: []string{"10.0.0.1"}})
	s.NoError(err)
	s.Equal(CodeObjectExists, code)
}

func (s *ClientSuite) TestSessionReuse() {
	ctx := context.Background()

	s.Require().NoError(s.client.CreateDomain(ctx, "one.gov", "REG-1"))
	s.Require().NoError(s.client.CreateDomain(ctx, "two.gov", "REG-1"))

	s.Equal(int32(1), s.registry.dialCount.Load(), "session should be reused across commands")
	s.Equal(int32(2), s.registry.cmdCount.Load())
}

func (s *ClientSuite) TestLoginFailureIsConnectionError() {
	failing := &fakeRegistry{}
	failing.handler = func(*command) *response { return okResponse() }
	client := New(config.EPPConfig{CommandTimeout: time.Second}, func(_ context.Context) (net.Conn, error) {
		clientConn, serverConn := net.Pipe()
		go func() {
			defer serverConn.Close()
			greeting, _ := xml.Marshal(&message{Greeting: &greeting{ServerID: "fake"}})
			_ = writeFrame(serverConn, greeting)
			if _, err := readFrame(serverConn); err != nil {
				return
			}
			out, _ := xml.Marshal(&message{Response: errResponse(2200, "Authentication error")})
			_ = writeFrame(serverConn, out)
		}()
		return clientConn, nil
	})

	err := client.CreateDomain(context.Background(), "example.gov", "REG-1")
	s.Error(err)
	s.True(IsConnectionError(err))
}
