package navigation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/httpx"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Handler serves the menu filtered for the current actor.
type Handler struct {
	menu   []Node
	source rbac.SubjectSource
	rbac   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(menu []Node, source rbac.SubjectSource, rbac rbac.Middleware) *Handler {
	return &Handler{menu: menu, source: source, rbac: rbac}
}

// MountRoutes registers navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthentication())
		r.Use(h.rbac.RequireSession())
		r.Use(h.rbac.RequireAll())
		r.Get("/", h.showMenu)
	})
}

func (h *Handler) showMenu(w http.ResponseWriter, r *http.Request) {
	id := h.source.CurrentSubject().Identity
	menu := Filter(h.menu, id)
	if menu == nil {
		menu = []Node{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menu": menu})
}
