// Package handler wires domain lifecycle endpoints to the domain service.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registrar/internal/domains/dnscheck"
	"registrar/internal/domains/models"
	"registrar/internal/domains/service"
	"registrar/internal/epp"
	"registrar/pkg/derrors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

// Service defines the domain operations the handler depends on.
type Service interface {
	Get(ctx context.Context, name string) (*models.Domain, error)
	Available(ctx context.Context, name string) (bool, error)
	Transition(ctx context.Context, name string, event service.Event, opts service.TransitionOpts) (*models.Domain, error)
	Renew(ctx context.Context, name string, years int) (*models.Domain, error)
	Reconcile(ctx context.Context, name string) (*models.Domain, error)
	Contacts(ctx context.Context, name string) ([]*models.PublicContact, error)
	SetContact(ctx context.Context, name string, typ models.ContactType, c *models.PublicContact) (*models.PublicContact, error)
	Nameservers(ctx context.Context, name string) ([]models.Host, error)
	SetNameservers(ctx context.Context, name string, hosts []models.Host) error
}

// Verifier probes a delegation before the ready transition.
type Verifier interface {
	Verify(ctx context.Context, domainName string, hosts []models.Host) ([]dnscheck.Result, error)
}

// Handler serves the domain endpoints.
type Handler struct {
	service  Service
	verifier Verifier
	logger   *slog.Logger
}

// New constructs a domain handler with its dependencies.
func New(service Service, verifier Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
	}
}

// Register mounts the public endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domains/{name}/available", h.HandleAvailable)
}

// RegisterManage mounts the authenticated management endpoints.
func (h *Handler) RegisterManage(r chi.Router) {
	r.Get("/domains/{name}", h.HandleGet)
	r.Get("/domains/{name}/contacts", h.HandleListContacts)
	r.Put("/domains/{name}/contacts/{type}", h.HandleSetContact)
	r.Get("/domains/{name}/nameservers", h.HandleGetNameservers)
	r.Put("/domains/{name}/nameservers", h.HandleSetNameservers)
	r.Post("/domains/{name}/transitions", h.HandleTransition)
	r.Post("/domains/{name}/renew", h.HandleRenew)
	r.Post("/domains/{name}/reconcile", h.HandleReconcile)
}

// HandleAvailable handles GET /domains/{name}/available.
//
// The endpoint is public and must stay cheap to fail: when the registry is
// unreachable the answer degrades to unavailable rather than an error, so a
// signup form never shows a stack trace because a session flapped.
func (h *Handler) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	available, err := h.service.Available(ctx, name)
	if err != nil {
		if derrors.HasCode(err, derrors.CodeInvalidInput) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.WarnContext(ctx, "availability check degraded",
			"request_id", requestcontext.RequestID(ctx),
			"domain", name,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, AvailabilityResponse{Domain: name, Available: false})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AvailabilityResponse{Domain: name, Available: available})
}

// HandleGet handles GET /domains/{name}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomain(d))
}

// HandleTransition handles POST /domains/{name}/transitions.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	req, err := httputil.Decode[TransitionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	event := req.ParsedEvent()
	if event == service.EventReady {
		if err := h.verifyDelegation(ctx, name); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	d, err := h.service.Transition(ctx, name, event, service.TransitionOpts{IgnoreEPP: req.IgnoreEPP})
	if err != nil {
		if service.IsTransitionNotAllowed(err) {
			httputil.WriteError(w, derrors.Wrap(err, derrors.CodeConflict, "transition not allowed"))
			return
		}
		h.logger.ErrorContext(ctx, "domain transition failed",
			"request_id", requestcontext.RequestID(ctx),
			"domain", name,
			"event", req.Event,
			"error", err,
		)
		httputil.WriteError(w, registryFacing(err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDomain(d))
}

// verifyDelegation checks the registry's current nameserver set answers for
// the domain before it may be marked ready.
func (h *Handler) verifyDelegation(ctx context.Context, name string) error {
	hosts, err := h.service.Nameservers(ctx, name)
	if err != nil {
		return registryFacing(err)
	}
	if _, err := h.verifier.Verify(ctx, name, hosts); err != nil {
		return err
	}
	return nil
}

// HandleRenew handles POST /domains/{name}/renew.
func (h *Handler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[RenewRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.Renew(r.Context(), chi.URLParam(r, "name"), req.Years)
	if err != nil {
		httputil.WriteError(w, registryFacing(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomain(d))
}

// HandleReconcile handles POST /domains/{name}/reconcile.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Reconcile(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, registryFacing(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomain(d))
}

// HandleListContacts handles GET /domains/{name}/contacts.
func (h *Handler) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.Contacts(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, FromContact(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleSetContact handles PUT /domains/{name}/contacts/{type}.
func (h *Handler) HandleSetContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	typ := models.ContactType(chi.URLParam(r, "type"))

	req, err := httputil.Decode[ContactRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.SetContact(ctx, name, typ, req.ToModel())
	if err != nil {
		httputil.WriteError(w, registryFacing(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromContact(c))
}

// HandleGetNameservers handles GET /domains/{name}/nameservers.
func (h *Handler) HandleGetNameservers(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.service.Nameservers(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, registryFacing(err))
		return
	}
	resp := NameserversResponse{Hosts: make([]HostRequest, 0, len(hosts))}
	for _, h := range hosts {
		resp.Hosts = append(resp.Hosts, HostRequest{Name: h.Name, IPs: h.IPs})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleSetNameservers handles PUT /domains/{name}/nameservers.
func (h *Handler) HandleSetNameservers(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[NameserversRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.service.SetNameservers(r.Context(), name, req.ToModel()); err != nil {
		httputil.WriteError(w, registryFacing(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// registryFacing translates registry failures into coded errors for the
// response writer. Connection trouble is a 503; a registry refusal carries
// its note so operators see why the registry said no.
func registryFacing(err error) error {
	if epp.IsConnectionError(err) {
		return derrors.Wrap(err, derrors.CodeUnavailable, "registry unavailable")
	}
	var re *epp.RegistryError
	if errors.As(err, &re) {
		return derrors.Wrap(err, derrors.CodeConflict, re.Note)
	}
	return err
}
