package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/assignment"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/authstate"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/httpx"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/shared"
)

// SessionEnder ends the local session when the directory rejects the
// credential. The ticket is taken before the directory call so a rejection
// cannot end a session that started after it.
type SessionEnder interface {
	Ticket() (authstate.Ticket, error)
	EndIfCurrent(ctx context.Context, t authstate.Ticket) error
}

// Handler manages the permission screen's user endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	workflow *assignment.Workflow
	session  SessionEnder
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, workflow *assignment.Workflow, session SessionEnder, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, workflow: workflow, session: session, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPermission))
		r.Get("/", h.listUsers)
		r.Put("/{id}/role", h.assignOne)
		r.Post("/role", h.assignMany)
	})
}

type assignRequest struct {
	Role         string   `json:"role" validate:"required"`
	Permissions  []string `json:"permissions" validate:"required,min=1,dive,required"`
	Acknowledged bool     `json:"acknowledged"`
}

type bulkAssignRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,required"`
	assignRequest
}

type failedTarget struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Status: q.Get("status"), Query: q.Get("q")}
	if raw := q.Get("role"); raw != "" {
		role, err := rbac.ParseRole(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		filter.Role = role
	}
	page, perPage, err := shared.ParsePagination(q)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	ticket := h.ticket()
	list, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.respondError(w, r, ticket, err)
		return
	}
	window, meta := shared.Paginate(list, page, perPage)
	httpx.JSON(w, http.StatusOK, map[string]any{"users": window, "pagination": meta})
}

func (h *Handler) assignOne(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	conf, err := h.confirm(req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket := h.ticket()
	res, err := h.workflow.ApplySingle(r.Context(), chi.URLParam(r, "id"), conf)
	if err != nil {
		h.respondError(w, r, ticket, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) assignMany(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	conf, err := h.confirm(req.assignRequest)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket := h.ticket()
	res, err := h.workflow.ApplyBulk(r.Context(), req.UserIDs, conf)
	var partial *assignment.BulkPartialFailure
	if errors.As(err, &partial) {
		if errors.Is(err, directory.ErrUnauthorized) {
			h.endSession(r, ticket)
		}
		failed := make([]failedTarget, len(partial.Failed))
		for i, f := range partial.Failed {
			failed[i] = failedTarget{UserID: f.UserID, Error: f.Err.Error()}
		}
		httpx.JSON(w, http.StatusMultiStatus, map[string]any{
			"result": res,
			"error":  partial.Error(),
			"failed": failed,
		})
		return
	}
	if err != nil {
		h.respondError(w, r, ticket, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// confirm replays the submitted checkboxes onto a fresh confirmation so the
// acknowledgement and permission gate is enforced server side.
func (h *Handler) confirm(req assignRequest) (*assignment.Confirmation, error) {
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	conf, err := h.workflow.Prepare(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	for _, name := range req.Permissions {
		p, err := rbac.ParsePermission(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
		if err := conf.SetChecked(p, true); err != nil {
			return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
	}
	conf.Acknowledge(req.Acknowledged)
	if !conf.CanConfirm() {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, assignment.ErrConfirmationIncomplete)
	}
	return conf, nil
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, ticket authstate.Ticket, err error) {
	switch {
	case errors.Is(err, directory.ErrUnauthorized):
		h.endSession(r, ticket)
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "the directory rejected the credential")
	case errors.Is(err, assignment.ErrNoTargets), errors.Is(err, assignment.ErrConfirmationIncomplete):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, directory.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) ticket() authstate.Ticket {
	if h.session == nil {
		return authstate.Ticket{}
	}
	t, err := h.session.Ticket()
	if err != nil {
		return authstate.Ticket{}
	}
	return t
}

func (h *Handler) endSession(r *http.Request, ticket authstate.Ticket) {
	if h.session == nil {
		return
	}
	switch err := h.session.EndIfCurrent(r.Context(), ticket); {
	case err == nil:
	case errors.Is(err, authstate.ErrStaleRefresh):
		h.logger.Debug("rejection belongs to an ended session", slog.String("user_id", ticket.UserID))
	default:
		h.logger.Warn("logout after rejected credential", slog.Any("error", err))
	}
}
