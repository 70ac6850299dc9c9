package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"registrar/internal/domains/dnscheck"
	"registrar/internal/domains/models"
	"registrar/internal/domains/service"
	"registrar/internal/epp"
	"registrar/pkg/derrors"
)

type stubService struct {
	domain        *models.Domain
	available     bool
	availableErr  error
	transitionErr error
	hosts         []models.Host
	hostsErr      error
}

func (s *stubService) Get(ctx context.Context, name string) (*models.Domain, error) {
	if s.domain == nil {
		return nil, derrors.Newf(derrors.CodeNotFound, "domain %s not found", name)
	}
	return s.domain, nil
}

func (s *stubService) Available(ctx context.Context, name string) (bool, error) {
	return s.available, s.availableErr
}

func (s *stubService) Transition(ctx context.Context, name string, event service.Event, opts service.TransitionOpts) (*models.Domain, error) {
	if s.transitionErr != nil {
		return nil, s.transitionErr
	}
	return s.domain, nil
}

func (s *stubService) Renew(ctx context.Context, name string, years int) (*models.Domain, error) {
	return s.domain, nil
}

func (s *stubService) Reconcile(ctx context.Context, name string) (*models.Domain, error) {
	return s.domain, nil
}

func (s *stubService) Contacts(ctx context.Context, name string) ([]*models.PublicContact, error) {
	return nil, nil
}

func (s *stubService) SetContact(ctx context.Context, name string, typ models.ContactType, c *models.PublicContact) (*models.PublicContact, error) {
	return c, nil
}

func (s *stubService) Nameservers(ctx context.Context, name string) ([]models.Host, error) {
	return s.hosts, s.hostsErr
}

func (s *stubService) SetNameservers(ctx context.Context, name string, hosts []models.Host) error {
	return nil
}

type stubVerifier struct {
	err    error
	called int
}

func (v *stubVerifier) Verify(ctx context.Context, domainName string, hosts []models.Host) ([]dnscheck.Result, error) {
	v.called++
	return nil, v.err
}

type HandlerSuite struct {
	suite.Suite

	svc      *stubService
	verifier *stubVerifier
	router   chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.svc = &stubService{}
	s.verifier = &stubVerifier{}
	h := New(s.svc, s.verifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterManage(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestAvailableOK() {
	s.svc.available = true

	w := s.do(http.MethodGet, "/domains/fresh.gov/available", nil)
	s.Equal(http.StatusOK, w.Code)

	var resp AvailabilityResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.True(resp.Available)
	s.Equal("fresh.gov", resp.Domain)
}

func (s *HandlerSuite) TestAvailableDegradesWhenRegistryDown() {
	s.svc.availableErr = &epp.ConnectionError{Op: "check domain"}

	w := s.do(http.MethodGet, "/domains/fresh.gov/available", nil)
	s.Equal(http.StatusOK, w.Code, "registry outages must not surface as errors here")

	var resp AvailabilityResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.False(resp.Available)
}

func (s *HandlerSuite) TestAvailableRejectsBadName() {
	s.svc.availableErr = derrors.New(derrors.CodeInvalidInput, "not a valid domain name")

	w := s.do(http.MethodGet, "/domains/bogus/available", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestTransitionNotAllowedIsConflict() {
	s.svc.transitionErr = &service.TransitionNotAllowedError{
		Event: service.EventPlaceClientHold,
		From:  models.StateUnknown,
	}

	w := s.do(http.MethodPost, "/domains/early.gov/transitions",
		TransitionRequest{Event: "place_client_hold"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerSuite) TestTransitionRegistryDownIsUnavailable() {
	s.svc.transitionErr = &epp.ConnectionError{Op: "update domain"}

	w := s.do(http.MethodPost, "/domains/held.gov/transitions",
		TransitionRequest{Event: "place_client_hold"})
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlerSuite) TestReadyVerifiesDelegationFirst() {
	s.svc.domain = &models.Domain{Name: "fresh.gov", State: models.StateReady}
	s.svc.hosts = []models.Host{{Name: "ns1.outside.net"}, {Name: "ns2.outside.net"}}

	w := s.do(http.MethodPost, "/domains/fresh.gov/transitions",
		TransitionRequest{Event: "ready"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, s.verifier.called)
}

func (s *HandlerSuite) TestReadyBlockedByBrokenDelegation() {
	s.svc.hosts = []models.Host{{Name: "ns1.outside.net"}, {Name: "ns2.outside.net"}}
	s.verifier.err = derrors.New(derrors.CodeInvariantViolation, "only 1 of 2 nameservers answer")

	w := s.do(http.MethodPost, "/domains/fresh.gov/transitions",
		TransitionRequest{Event: "ready"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerSuite) TestNonReadyEventsSkipVerifier() {
	s.svc.domain = &models.Domain{Name: "held.gov", State: models.StateOnHold}

	w := s.do(http.MethodPost, "/domains/held.gov/transitions",
		TransitionRequest{Event: "place_client_hold"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal(0, s.verifier.called)
}

func (s *HandlerSuite) TestTransitionRequiresEvent() {
	w := s.do(http.MethodPost, "/domains/x.gov/transitions", TransitionRequest{})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestRenewValidatesYears() {
	w := s.do(http.MethodPost, "/domains/x.gov/renew", RenewRequest{Years: 0})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/domains/x.gov/renew", RenewRequest{Years: 11})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestSetContactValidatesBody() {
	w := s.do(http.MethodPut, "/domains/x.gov/contacts/security",
		ContactRequest{Name: "Security Team"})
	s.Equal(http.StatusBadRequest, w.Code, "email is required")
}

func (s *HandlerSuite) TestGetUnknownDomainIs404() {
	w := s.do(http.MethodGet, "/domains/missing.gov", nil)
	s.Equal(http.StatusNotFound, w.Code)
}
