package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/httpx"
)

// SubjectSource exposes the current auth state to the guards.
type SubjectSource interface {
	CurrentSubject() Subject
	// Invalidate forces the anonymous state after a failed credential check.
	Invalidate(ctx context.Context) error
}

// DecisionRecorder observes guard decisions.
type DecisionRecorder interface {
	ObserveDecision(d Decision)
}

// Middleware wires the guard chain into HTTP handlers.
type Middleware struct {
	Source    SubjectSource
	Validator CredentialChecker
	Logger    *slog.Logger
	Recorder  DecisionRecorder
	LoginPath string
	Bootstrap string
}

// RequireAuthentication applies the AuthenticationGuard.
func (m Middleware) RequireAuthentication() func(http.Handler) http.Handler {
	guard := AuthenticationGuard{Validator: m.Validator, LoginPath: m.LoginPath}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := m.Source.CurrentSubject()
			d := Evaluate(guard, sub, r.URL.Path)
			if d.Outcome == OutcomeRedirect && sub.Credential != "" {
				if err := m.Source.Invalidate(r.Context()); err != nil {
					m.logger().Error("invalidate credential", slog.Any("error", err))
				}
			}
			m.resolve(w, r, d, next)
		})
	}
}

// RequireSession applies the SessionGuard.
func (m Middleware) RequireSession() func(http.Handler) http.Handler {
	guard := SessionGuard{BootstrapPath: m.Bootstrap}
	return m.apply(guard)
}

// RequireAll applies a PermissionGuard for the given permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.apply(RequirePermissions(perms...))
}

// RequireRoute applies the PermissionGuard configured for a console route.
// Routes outside the table require nothing.
func (m Middleware) RequireRoute(route string) func(http.Handler) http.Handler {
	if p, ok := RouteRequirement(route); ok {
		return m.RequireAll(p)
	}
	return m.RequireAll()
}

// Guard applies an arbitrary guard.
func (m Middleware) Guard(g Guard) func(http.Handler) http.Handler {
	return m.apply(g)
}

func (m Middleware) apply(g Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Evaluate(g, m.Source.CurrentSubject(), r.URL.Path)
			m.resolve(w, r, d, next)
		})
	}
}

func (m Middleware) resolve(w http.ResponseWriter, r *http.Request, d Decision, next http.Handler) {
	if m.Recorder != nil {
		m.Recorder.ObserveDecision(d)
	}
	switch d.Outcome {
	case OutcomeRender:
		next.ServeHTTP(w, r)
	case OutcomeLoading:
		httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
	case OutcomeRedirect:
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
	default:
		m.logger().Warn("access denied", slog.String("path", r.URL.Path), slog.String("guard", d.Guard))
		httpx.Problem(w, http.StatusForbidden, "Access Denied", "you do not have permission to view this page")
	}
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
