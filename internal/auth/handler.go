package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/authstate"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/httpx"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// MountSessionRoutes registers the login landing, the login-activity
// checkpoint and the session API on the root router.
func (h *Handler) MountSessionRoutes(r chi.Router) {
	r.Get(rbac.LoginPath, h.showLogin)
	r.Get("/api/session", h.showSession)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthentication())
		r.Post("/api/session/refresh", h.refresh)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireSession())
			r.Get(rbac.BootstrapPath, h.showCheckpoint)
			r.Post(rbac.BootstrapPath, h.startSession)
		})
	})
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	view := h.service.Session(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"action":  "/auth/login",
		"session": view,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeValid(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.Info("login rejected", slog.String("email", form.Email))
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "email or password is not valid")
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("login succeeded", slog.String("user_id", view.Identity.UserID))
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
}

func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Session(r.Context()))
}

func (h *Handler) showCheckpoint(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Session(r.Context()))
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.StartSession(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Refresh(r.Context())
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, view)
	case errors.Is(err, directory.ErrUnauthorized):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "the directory rejected the credential")
	case errors.Is(err, authstate.ErrStaleRefresh):
		httpx.Problem(w, http.StatusConflict, "Conflict", "the session changed while refreshing")
	case directory.IsNetworkError(err):
		h.logger.Warn("profile refresh failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	default:
		h.respondStoreError(w, r, err)
	}
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authstate.ErrNotAuthenticated), errors.Is(err, authstate.ErrInvalidCredential):
		http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
	default:
		h.logger.Error("auth state update failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
