package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/auth"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/navigation"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/observability"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/roles"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Source             rbac.SubjectSource
	RBACMiddleware     rbac.Middleware
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	NavigationHandler  *navigation.Handler
	PermissionsHandler *rbac.PermissionsHandler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	home := "/dashboard"
	if params.Config != nil && params.Config.HomePath != "" {
		home = params.Config.HomePath
	}
	// Guards on the home screen bounce anonymous and pre-checkpoint actors.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, home, http.StatusSeeOther)
	})

	if params.AuthHandler != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Use(LoginRateLimit(params.Config))
			params.AuthHandler.MountRoutes(r)
		})
		params.AuthHandler.MountSessionRoutes(r)
	}
	if params.NavigationHandler != nil {
		r.Route("/api/navigation", params.NavigationHandler.MountRoutes)
	}

	mw := params.RBACMiddleware
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuthentication())
		r.Use(mw.RequireSession())

		r.Route("/permission", func(r chi.Router) {
			r.With(mw.RequireRoute("permission")).Get("/", screenHandler(params.Source, "permission"))
			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
			if params.RolesHandler != nil {
				r.Route("/roles", params.RolesHandler.MountRoutes)
			}
			if params.PermissionsHandler != nil {
				r.Route("/catalogue", params.PermissionsHandler.MountRoutes)
			}
		})
		mountScreens(r, mw, params.Source)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}
