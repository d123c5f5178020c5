package users

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DirectoryPort defines the directory calls the service needs.
type DirectoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
}

// Service caches the directory listing. Concurrent loads of the same epoch
// share one call.
type Service struct {
	dir    DirectoryPort
	logger *slog.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	users  []User
	loaded bool
	// epoch changes on Reset and Refetch so a load started before either is
	// not cached.
	epoch uint64
}

// NewService builds Service instance.
func NewService(dir DirectoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, logger: logger}
}

// ListUsers returns the cached listing, loading it on first use.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter) ([]User, error) {
	s.mu.RLock()
	cached, loaded := s.users, s.loaded
	s.mu.RUnlock()
	if !loaded {
		var err error
		cached, err = s.load(ctx, false)
		if err != nil {
			return nil, err
		}
	}
	out := make([]User, 0, len(cached))
	for _, u := range cached {
		if filter.Match(u) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

// Refetch reloads the listing from the directory. It never joins a load that
// started before it, so the cache reflects writes made before the call.
func (s *Service) Refetch(ctx context.Context) error {
	_, err := s.load(ctx, true)
	return err
}

// Reset drops the cached listing, e.g. after logout.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	s.loaded = false
	s.epoch++
}

func (s *Service) load(ctx context.Context, fresh bool) ([]User, error) {
	s.mu.Lock()
	if fresh {
		s.epoch++
	}
	epoch := s.epoch
	s.mu.Unlock()

	ch := s.group.DoChan("users:"+strconv.FormatUint(epoch, 10), func() (interface{}, error) {
		list, err := s.dir.ListUsers(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.epoch == epoch {
			s.users = list
			s.loaded = true
		}
		s.mu.Unlock()
		s.logger.Debug("directory listing loaded", slog.Int("users", len(list)))
		return list, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]User), nil
	}
}

func cloneUser(u User) User {
	u.Permissions = u.Permissions.Clone()
	return u
}
