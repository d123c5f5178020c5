package authstate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Ticket tags work started under a session, such as a profile refresh or a
// directory call whose 401 may end that session.
type Ticket struct {
	Generation uint64
	Revision   uint64
	UserID     string
}

// Ticket captures the current session.
func (s *Store) Ticket() (Ticket, error) {
	cur := s.read()
	if cur.Credential == "" || cur.Identity.UserID == "" {
		return Ticket{}, ErrNotAuthenticated
	}
	return Ticket{Generation: cur.Generation, Revision: cur.Revision, UserID: cur.Identity.UserID}, nil
}

// BeginRefresh captures the current session for a refresh about to start.
func (s *Store) BeginRefresh() (Ticket, error) {
	return s.Ticket()
}

func (t Ticket) sameSession(cur Snapshot) bool {
	return cur.Credential != "" && cur.Generation == t.Generation && cur.Identity.UserID == t.UserID
}

// ApplyRefresh stores a refreshed role and permission set unless the session
// the ticket was issued under has ended or its identity changed since, in
// which case ErrStaleRefresh is returned and nothing changes.
func (s *Store) ApplyRefresh(ctx context.Context, t Ticket, role rbac.Role, perms rbac.PermissionSet) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	check := func(cur Snapshot) error {
		if !t.sameSession(cur) || cur.Revision != t.Revision {
			return ErrStaleRefresh
		}
		return nil
	}
	return s.mutateLocked(ctx, check, func(next *Snapshot) {
		next.Identity.Role = role
		next.Identity.Permissions = perms.Clone()
		next.Revision++
	})
}

// EndIfCurrent logs out only while the ticket's session is still current. A
// rejection that resolves after a logout or a new login returns
// ErrStaleRefresh and leaves the newer session alone.
func (s *Store) EndIfCurrent(ctx context.Context, t Ticket) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}
	if !t.sameSession(s.read()) {
		return ErrStaleRefresh
	}
	return s.logoutLocked(ctx)
}

// ProfileFetcher loads the acting user's profile from the directory.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (directory.Profile, error)
}

// Refresher re-reads the acting user's role and permissions, typically when a
// console screen mounts.
type Refresher struct {
	store   *Store
	fetcher ProfileFetcher
	logger  *slog.Logger
}

// NewRefresher constructs a Refresher.
func NewRefresher(store *Store, fetcher ProfileFetcher, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{store: store, fetcher: fetcher, logger: logger}
}

// Refresh fetches the profile and applies it. A directory 401 is credential
// invalidity and logs out the session the refresh started under; network
// failures are returned without touching the session. A result or rejection
// that arrives after that session ended is discarded with ErrStaleRefresh.
func (r *Refresher) Refresh(ctx context.Context) error {
	ticket, err := r.store.BeginRefresh()
	if err != nil {
		return err
	}
	profile, err := r.fetcher.FetchProfile(ctx, ticket.UserID)
	if err != nil {
		if errors.Is(err, directory.ErrUnauthorized) {
			switch endErr := r.store.EndIfCurrent(ctx, ticket); {
			case endErr == nil:
				r.logger.Info("directory rejected credential, logged out", slog.String("user_id", ticket.UserID))
			case errors.Is(endErr, ErrStaleRefresh):
				r.logger.Debug("ignoring rejection for an ended session", slog.String("user_id", ticket.UserID))
				return endErr
			default:
				r.logger.Warn("logout after rejected credential", slog.Any("error", endErr))
			}
		}
		return err
	}
	if err := r.store.ApplyRefresh(ctx, ticket, profile.Role, profile.Permissions); err != nil {
		if errors.Is(err, ErrStaleRefresh) {
			r.logger.Debug("discarding stale profile refresh", slog.String("user_id", ticket.UserID))
		}
		return err
	}
	return nil
}
