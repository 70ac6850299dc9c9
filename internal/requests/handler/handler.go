// Package handler wires request workflow endpoints to the request service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registrar/internal/requests/models"
	"registrar/internal/requests/service"
	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

// Service defines the workflow operations the handler depends on.
type Service interface {
	Create(ctx context.Context, requesterID id.UserID, requestedDomain, organizationName string) (*models.DomainRequest, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.DomainRequest, error)
	AssignInvestigator(ctx context.Context, requestID id.RequestID, investigatorID id.UserID) (*models.DomainRequest, error)
	Submit(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error)
	InReview(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error)
	ActionNeeded(ctx context.Context, requestID id.RequestID, reason string) (*models.DomainRequest, error)
	Approve(ctx context.Context, requestID id.RequestID, sendEmail bool) (*models.DomainRequest, error)
	Withdraw(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error)
	Reject(ctx context.Context, requestID id.RequestID, reason string) (*models.DomainRequest, error)
	RejectWithPrejudice(ctx context.Context, requestID id.RequestID, reason string) (*models.DomainRequest, error)
}

// Handler serves the request workflow endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a request handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts requester-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.HandleCreate)
	r.Get("/requests/{id}", h.HandleGet)
	r.Post("/requests/{id}/submit", h.HandleSubmit)
	r.Post("/requests/{id}/withdraw", h.HandleWithdraw)
}

// RegisterReview mounts the staff review endpoints.
func (h *Handler) RegisterReview(r chi.Router) {
	r.Get("/requests", h.HandleList)
	r.Put("/requests/{id}/investigator", h.HandleAssignInvestigator)
	r.Post("/requests/{id}/in-review", h.HandleInReview)
	r.Post("/requests/{id}/action-needed", h.HandleActionNeeded)
	r.Post("/requests/{id}/approve", h.HandleApprove)
	r.Post("/requests/{id}/reject", h.HandleReject)
}

func requestID(r *http.Request) (id.RequestID, error) {
	return id.ParseRequestID(chi.URLParam(r, "id"))
}

// HandleCreate handles POST /requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, err := httputil.Decode[CreateRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Create(ctx, userID, req.RequestedDomain, req.OrganizationName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain request created",
		"request_id", requestcontext.RequestID(ctx),
		"domain_request_id", created.ID,
		"requested_domain", created.RequestedDomain,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRequest(created))
}

// HandleGet handles GET /requests/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID, err := requestID(r)
	if err != nil {
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeBadRequest, "invalid request id"))
		return
	}
	dr, err := h.service.Get(r.Context(), reqID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(dr))
}

// HandleList handles GET /requests?status=submitted.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.URL.Query().Get("status"))
	out, err := h.service.ListByStatus(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := make([]*RequestResponse, 0, len(out))
	for _, dr := range out {
		resp = append(resp, FromRequest(dr))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleAssignInvestigator handles PUT /requests/{id}/investigator.
func (h *Handler) HandleAssignInvestigator(w http.ResponseWriter, r *http.Request) {
	reqID, err := requestID(r)
	if err != nil {
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeBadRequest, "invalid request id"))
		return
	}
	req, err := httputil.Decode[AssignInvestigatorRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	investigatorID, err := id.ParseUserID(req.InvestigatorID)
	if err != nil {
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeBadRequest, "invalid investigator id"))
		return
	}

	dr, err := h.service.AssignInvestigator(r.Context(), reqID, investigatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(dr))
}

// HandleSubmit handles POST /requests/{id}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error) {
		return h.service.Submit(ctx, reqID)
	})
}

// HandleWithdraw handles POST /requests/{id}/withdraw.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error) {
		return h.service.Withdraw(ctx, reqID)
	})
}

// HandleInReview handles POST /requests/{id}/in-review.
func (h *Handler) HandleInReview(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error) {
		return h.service.InReview(ctx, reqID)
	})
}

// HandleActionNeeded handles POST /requests/{id}/action-needed.
func (h *Handler) HandleActionNeeded(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[ReasonRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.runTransition(w, r, func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error) {
		return h.service.ActionNeeded(ctx, reqID, req.Reason)
	})
}

// HandleApprove handles POST /requests/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[ApproveRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.runTransition(w, r, func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error) {
		return h.service.Approve(ctx, reqID, !req.SuppressEmail)
	})
}

// HandleReject handles POST /requests/{id}/reject. With prejudice, the
// requester's account is permanently restricted as well.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[RejectRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.runTransition(w, r, func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error) {
		if req.WithPrejudice {
			return h.service.RejectWithPrejudice(ctx, reqID, req.Reason)
		}
		return h.service.Reject(ctx, reqID, req.Reason)
	})
}

func (h *Handler) runTransition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, reqID id.RequestID) (*models.DomainRequest, error)) {

	ctx := r.Context()
	reqID, err := requestID(r)
	if err != nil {
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeBadRequest, "invalid request id"))
		return
	}

	dr, err := op(ctx, reqID)
	if err != nil {
		switch {
		case service.IsTransitionNotAllowed(err):
			httputil.WriteError(w, derrors.Wrap(err, derrors.CodeConflict, "transition not allowed"))
		case service.IsDomainInUse(err):
			httputil.WriteError(w, derrors.Wrap(err, derrors.CodeConflict, err.Error()))
		default:
			httputil.WriteError(w, err)
		}
		return
	}

	h.logger.InfoContext(ctx, "request workflow transition",
		"request_id", requestcontext.RequestID(ctx),
		"domain_request_id", dr.ID,
		"status", dr.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRequest(dr))
}
