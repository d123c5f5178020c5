package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/httpx"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// screenView is what a guarded console screen renders once every guard
// passes. Screen content itself is served by the console front end.
type screenView struct {
	Screen     string          `json:"screen"`
	Permission rbac.Permission `json:"permission"`
	UserID     string          `json:"userId"`
	Role       rbac.Role       `json:"role"`
}

// mountScreens registers every route of the route table behind its
// permission guard. The permission screen is mounted separately.
func mountScreens(r chi.Router, mw rbac.Middleware, source rbac.SubjectSource) {
	for _, entry := range rbac.RouteTable() {
		if entry.Route == "permission" {
			continue
		}
		h := screenHandler(source, entry.Route)
		guarded := r.With(mw.RequireRoute(entry.Route))
		guarded.Get("/"+entry.Route, h)
		guarded.Get("/"+entry.Route+"/*", h)
	}
}

func screenHandler(source rbac.SubjectSource, route string) http.HandlerFunc {
	required, _ := rbac.RouteRequirement(route)
	return func(w http.ResponseWriter, r *http.Request) {
		id := source.CurrentSubject().Identity
		httpx.JSON(w, http.StatusOK, screenView{
			Screen:     route,
			Permission: required,
			UserID:     id.UserID,
			Role:       id.Role,
		})
	}
}
