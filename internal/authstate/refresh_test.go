package authstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

type stubFetcher struct {
	profile directory.Profile
	err     error
	before  func()
	calls   []string
}

func (s *stubFetcher) FetchProfile(ctx context.Context, userID string) (directory.Profile, error) {
	s.calls = append(s.calls, userID)
	if s.before != nil {
		s.before()
	}
	return s.profile, s.err
}

func loggedIn(t *testing.T) *Store {
	t.Helper()
	store := NewStore(NewMemoryKV(), validator())
	require.NoError(t, store.Login(context.Background(), waiter(), token(t, now.Add(time.Hour))))
	return store
}

func TestRefreshAppliesProfile(t *testing.T) {
	store := loggedIn(t)
	fetcher := &stubFetcher{profile: directory.Profile{
		ID:          "u1",
		Role:        rbac.RoleManager,
		Permissions: rbac.NewPermissionSet(rbac.PermReports, rbac.PermOrders),
	}}

	require.NoError(t, NewRefresher(store, fetcher, nil).Refresh(context.Background()))
	assert.Equal(t, []string{"u1"}, fetcher.calls)
	snap := store.Snapshot()
	assert.Equal(t, rbac.RoleManager, snap.Identity.Role)
	assert.Equal(t, []string{"Orders", "Reports"}, snap.Identity.Permissions.Strings())
}

func TestRefreshDiscardedAfterLogout(t *testing.T) {
	ctx := context.Background()
	store := loggedIn(t)
	fetcher := &stubFetcher{
		profile: directory.Profile{ID: "u1", Role: rbac.RoleAdmin},
		before:  func() { require.NoError(t, store.Logout(ctx)) },
	}

	err := NewRefresher(store, fetcher, nil).Refresh(ctx)
	require.ErrorIs(t, err, ErrStaleRefresh)
	snap := store.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State())
	assert.Equal(t, rbac.RoleNone, snap.Identity.Role)
}

func TestRefreshDiscardedAfterReLogin(t *testing.T) {
	ctx := context.Background()
	store := loggedIn(t)
	ticket, err := store.BeginRefresh()
	require.NoError(t, err)

	require.NoError(t, store.Logout(ctx))
	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Hour))))

	err = store.ApplyRefresh(ctx, ticket, rbac.RoleAdmin, nil)
	require.ErrorIs(t, err, ErrStaleRefresh)
	assert.Equal(t, rbac.RoleWaiter, store.Snapshot().Identity.Role)
}

func TestRefreshNetworkErrorKeepsSession(t *testing.T) {
	store := loggedIn(t)
	fetcher := &stubFetcher{err: &directory.NetworkError{Op: "fetch profile", Status: 503}}

	err := NewRefresher(store, fetcher, nil).Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, directory.IsNetworkError(err))
	assert.Equal(t, StateNoSession, store.Snapshot().State())
}

func TestRefreshUnauthorizedLogsOut(t *testing.T) {
	store := loggedIn(t)
	fetcher := &stubFetcher{err: directory.ErrUnauthorized}

	err := NewRefresher(store, fetcher, nil).Refresh(context.Background())
	require.ErrorIs(t, err, directory.ErrUnauthorized)
	assert.Equal(t, StateAnonymous, store.Snapshot().State())
}

func TestRefreshRequiresLogin(t *testing.T) {
	store := NewStore(NewMemoryKV(), validator())
	err := NewRefresher(store, &stubFetcher{}, nil).Refresh(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRefreshRejectionAfterReLoginKeepsNewSession(t *testing.T) {
	ctx := context.Background()
	store := loggedIn(t)
	cashier := rbac.Identity{UserID: "u2", Role: rbac.RoleCashier, Permissions: rbac.NewPermissionSet(rbac.PermDues)}
	fetcher := &stubFetcher{
		err: directory.ErrUnauthorized,
		before: func() {
			require.NoError(t, store.Logout(ctx))
			require.NoError(t, store.Login(ctx, cashier, token(t, now.Add(time.Hour))))
		},
	}

	err := NewRefresher(store, fetcher, nil).Refresh(ctx)
	require.ErrorIs(t, err, ErrStaleRefresh)
	snap := store.Snapshot()
	assert.Equal(t, StateNoSession, snap.State())
	assert.Equal(t, "u2", snap.Identity.UserID)
}

func TestRefreshRejectionAfterSameUserReLoginKeepsNewSession(t *testing.T) {
	ctx := context.Background()
	store := loggedIn(t)
	fetcher := &stubFetcher{
		err: directory.ErrUnauthorized,
		before: func() {
			require.NoError(t, store.Logout(ctx))
			require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(2*time.Hour))))
		},
	}

	require.ErrorIs(t, NewRefresher(store, fetcher, nil).Refresh(ctx), ErrStaleRefresh)
	assert.Equal(t, StateNoSession, store.Snapshot().State())
}

func TestRefreshDiscardedAfterSelfRoleUpdate(t *testing.T) {
	ctx := context.Background()
	store := loggedIn(t)
	fetcher := &stubFetcher{
		profile: directory.Profile{ID: "u1", Role: rbac.RoleWaiter, Permissions: rbac.NewPermissionSet(rbac.PermPOS)},
		before: func() {
			require.NoError(t, store.UpdateSelfRole(ctx, rbac.RoleCashier, rbac.NewPermissionSet(rbac.PermDues)))
		},
	}

	require.ErrorIs(t, NewRefresher(store, fetcher, nil).Refresh(ctx), ErrStaleRefresh)
	id := store.Snapshot().Identity
	assert.Equal(t, rbac.RoleCashier, id.Role)
	assert.True(t, id.Permissions.Has(rbac.PermDues))
	assert.False(t, id.Permissions.Has(rbac.PermPOS))
}

func TestEndIfCurrent(t *testing.T) {
	ctx := context.Background()
	store := loggedIn(t)
	ticket, err := store.Ticket()
	require.NoError(t, err)

	// A role change does not make the ticket stale for ending the session.
	require.NoError(t, store.UpdateSelfRole(ctx, rbac.RoleCashier, rbac.NewPermissionSet()))
	require.NoError(t, store.EndIfCurrent(ctx, ticket))
	assert.Equal(t, StateAnonymous, store.Snapshot().State())

	require.ErrorIs(t, store.EndIfCurrent(ctx, ticket), ErrStaleRefresh)

	_, err = store.Ticket()
	require.ErrorIs(t, err, ErrNotAuthenticated)
}
