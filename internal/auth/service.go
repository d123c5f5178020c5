package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/authstate"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/credential"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// LoginPort exchanges login details for a credential.
type LoginPort interface {
	Login(ctx context.Context, email, password string) (directory.LoginResult, error)
}

// Inspector reads the expiry of a credential.
type Inspector interface {
	Inspect(token string) (credential.Claims, error)
}

// Service wraps the login, checkpoint and refresh flows.
type Service struct {
	dir       LoginPort
	store     *authstate.Store
	refresher *authstate.Refresher
	inspector Inspector
	home      string
}

// NewService constructs a new Service. home is where a fully started session
// lands.
func NewService(dir LoginPort, store *authstate.Store, refresher *authstate.Refresher, inspector Inspector, home string) *Service {
	if home == "" {
		home = "/dashboard"
	}
	return &Service{dir: dir, store: store, refresher: refresher, inspector: inspector, home: home}
}

// Login authenticates against the directory and enters the NoSession state.
func (s *Service) Login(ctx context.Context, email, password string) (SessionView, error) {
	res, err := s.dir.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidLogin) {
			return SessionView{}, ErrInvalidCredentials
		}
		return SessionView{}, err
	}
	if err := s.store.Login(ctx, res.User.Identity(), res.Token); err != nil {
		if errors.Is(err, authstate.ErrInvalidCredential) || errors.Is(err, authstate.ErrInvalidIdentity) {
			return SessionView{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return SessionView{}, err
	}
	return s.Session(ctx), nil
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Logout(ctx)
}

// StartSession passes the login-activity checkpoint.
func (s *Service) StartSession(ctx context.Context) (SessionView, error) {
	if err := s.store.SetSessionStarted(ctx, true); err != nil {
		return SessionView{}, err
	}
	return s.Session(ctx), nil
}

// Refresh reloads the acting user's role and permissions.
func (s *Service) Refresh(ctx context.Context) (SessionView, error) {
	if err := s.refresher.Refresh(ctx); err != nil {
		return SessionView{}, err
	}
	return s.Session(ctx), nil
}

// Session describes the current auth state. An expired credential is logged
// out first, so the view never reports it as authenticated.
func (s *Service) Session(ctx context.Context) SessionView {
	// The in-memory state is cleared even when the record cannot be.
	_ = s.store.Invalidate(ctx)
	return s.view(s.store.Snapshot())
}

func (s *Service) view(snap authstate.Snapshot) SessionView {
	view := SessionView{
		State:          snap.State().String(),
		Authenticated:  snap.State() != authstate.StateAnonymous,
		SessionStarted: snap.SessionStarted,
	}
	switch snap.State() {
	case authstate.StateAnonymous:
		view.Next = rbac.LoginPath
		return view
	case authstate.StateNoSession:
		view.Next = rbac.BootstrapPath
	default:
		view.Next = s.home
	}
	id := snap.Identity.Clone()
	view.Identity = &id
	if s.inspector != nil {
		if claims, err := s.inspector.Inspect(snap.Credential); err == nil {
			exp := claims.ExpiresAt.UTC().Truncate(time.Second)
			view.ExpiresAt = &exp
		}
	}
	return view
}
