package rbac

// Outcome is the render decision produced by a guard.
type Outcome int

const (
	// OutcomeRender renders the protected content.
	OutcomeRender Outcome = iota
	// OutcomeLoading renders a loading placeholder until identity resolves.
	OutcomeLoading
	// OutcomeRedirect sends the actor to Decision.Location.
	OutcomeRedirect
	// OutcomeDenied renders the access-denied view.
	OutcomeDenied
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRender:
		return "render"
	case OutcomeLoading:
		return "loading"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is the resolved outcome of a guard.
type Decision struct {
	Outcome  Outcome
	Location string
	Guard    string
}

// Render reports whether the protected content may be shown.
func (d Decision) Render() bool {
	return d.Outcome == OutcomeRender
}

func render(guard string) Decision {
	return Decision{Outcome: OutcomeRender, Guard: guard}
}

func redirect(guard, location string) Decision {
	return Decision{Outcome: OutcomeRedirect, Location: location, Guard: guard}
}

// Subject is the view of auth state the guards decide on.
type Subject struct {
	Credential     string
	SessionStarted bool
	Identity       Identity
}

// CredentialChecker reports whether a credential is still usable.
type CredentialChecker interface {
	IsValid(token string) bool
}

// Guard maps the current subject and requested path to a decision.
type Guard interface {
	Decide(sub Subject, path string) Decision
}

// GuardFunc adapts a function into a Guard.
type GuardFunc func(sub Subject, path string) Decision

// Decide satisfies Guard.
func (f GuardFunc) Decide(sub Subject, path string) Decision {
	return f(sub, path)
}

// Guard names used in decisions and metrics.
const (
	GuardAuthentication = "authentication"
	GuardSession        = "session"
	GuardPermission     = "permission"
)

// AuthenticationGuard redirects to the login route unless a valid credential
// is held.
type AuthenticationGuard struct {
	Validator CredentialChecker
	LoginPath string
}

// Decide satisfies Guard.
func (g AuthenticationGuard) Decide(sub Subject, _ string) Decision {
	login := g.LoginPath
	if login == "" {
		login = LoginPath
	}
	if sub.Credential == "" || g.Validator == nil || !g.Validator.IsValid(sub.Credential) {
		return redirect(GuardAuthentication, login)
	}
	return render(GuardAuthentication)
}

// SessionGuard redirects to the bootstrap path until the session flag is set.
// The bootstrap path itself is always allowed.
type SessionGuard struct {
	BootstrapPath string
}

// Decide satisfies Guard.
func (g SessionGuard) Decide(sub Subject, path string) Decision {
	bootstrap := g.BootstrapPath
	if bootstrap == "" {
		bootstrap = BootstrapPath
	}
	if samePath(path, bootstrap) {
		return render(GuardSession)
	}
	if !sub.SessionStarted {
		return redirect(GuardSession, bootstrap)
	}
	return render(GuardSession)
}

// PermissionGuard allows the route when the identity holds every required
// permission. An unresolved identity yields the loading placeholder.
type PermissionGuard struct {
	Required PermissionSet
	// Fallback, when set, replaces the access-denied view with a redirect.
	Fallback string
}

// RequirePermissions builds a PermissionGuard.
func RequirePermissions(perms ...Permission) PermissionGuard {
	return PermissionGuard{Required: NewPermissionSet(perms...)}
}

// WithFallback returns a copy redirecting to path on denial.
func (g PermissionGuard) WithFallback(path string) PermissionGuard {
	g.Fallback = path
	return g
}

// Decide satisfies Guard.
func (g PermissionGuard) Decide(sub Subject, _ string) Decision {
	id := sub.Identity
	if !id.Resolved() {
		return Decision{Outcome: OutcomeLoading, Guard: GuardPermission}
	}
	if id.Allows(g.Required) {
		return render(GuardPermission)
	}
	if g.Fallback != "" {
		return redirect(GuardPermission, g.Fallback)
	}
	return Decision{Outcome: OutcomeDenied, Guard: GuardPermission}
}

// Chain evaluates guards in order and returns the first decision that does
// not render. Guards nest as authentication, session, then permission.
func Chain(guards ...Guard) Guard {
	return GuardFunc(func(sub Subject, path string) Decision {
		last := render("chain")
		for _, g := range guards {
			if g == nil {
				continue
			}
			d := Evaluate(g, sub, path)
			if !d.Render() {
				return d
			}
			last = d
		}
		return last
	})
}

// Evaluate runs a guard and converts a panic into an access-denied decision so
// no guard failure escapes its boundary.
func Evaluate(g Guard, sub Subject, path string) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = Decision{Outcome: OutcomeDenied, Guard: "panic"}
		}
	}()
	return g.Decide(sub, path)
}

func samePath(a, b string) bool {
	return trimSlashes(a) == trimSlashes(b)
}

func trimSlashes(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}
