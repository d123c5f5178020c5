package roles

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/httpx"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Handler manages role catalogue endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPermission))
		r.Get("/", h.listRoles)
		r.Get("/{role}", h.showConfirmation)
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": h.service.ListRoles()})
}

func (h *Handler) showConfirmation(w http.ResponseWriter, r *http.Request) {
	role, err := rbac.ParseRole(chi.URLParam(r, "role"))
	if err == nil {
		var view ConfirmationView
		view, err = h.service.Confirmation(role)
		if err == nil {
			httpx.JSON(w, http.StatusOK, view)
			return
		}
	}
	if errors.Is(err, rbac.ErrUnknownRole) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("prepare confirmation", slog.Any("error", err))
	httpx.RespondError(w, err)
}
