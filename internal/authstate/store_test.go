package authstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/credential"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return s
}

func validator() *credential.Validator {
	return credential.NewValidator(credential.WithClock(func() time.Time { return now }))
}

func waiter() rbac.Identity {
	return rbac.Identity{
		UserID:       "u1",
		Role:         rbac.RoleWaiter,
		Permissions:  rbac.NewPermissionSet(rbac.PermOrders, rbac.PermPOS),
		RestaurantID: "r1",
		UserName:     "Asha",
	}
}

func newRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client, "till-1"), mr
}

type failingKV struct {
	*MemoryKV
	failStore bool
	failClear bool
}

func (f *failingKV) Store(ctx context.Context, values map[string]string, remove []string) error {
	if f.failStore {
		return errors.New("disk full")
	}
	return f.MemoryKV.Store(ctx, values, remove)
}

func (f *failingKV) Clear(ctx context.Context, keys []string) error {
	if f.failClear {
		return errors.New("disk gone")
	}
	return f.MemoryKV.Clear(ctx, keys)
}

func TestLoginSessionLogoutLifecycle(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisKV(t)
	store := NewStore(kv, validator())
	require.NoError(t, store.Hydrate(ctx))
	assert.Equal(t, StateAnonymous, store.Snapshot().State())

	tok := token(t, now.Add(time.Hour))
	require.NoError(t, store.Login(ctx, waiter(), tok))
	snap := store.Snapshot()
	assert.Equal(t, StateNoSession, snap.State())
	assert.Equal(t, rbac.RoleWaiter, snap.Identity.Role)

	stored, err := mr.Get("console:till-1:authToken")
	require.NoError(t, err)
	assert.Equal(t, tok, stored)
	assert.False(t, mr.Exists("console:till-1:sessionStarted"))
	perms, err := mr.Get("console:till-1:userPermissions")
	require.NoError(t, err)
	assert.JSONEq(t, `["Orders","POS"]`, perms)

	require.NoError(t, store.SetSessionStarted(ctx, true))
	assert.Equal(t, StateSessionActive, store.Snapshot().State())
	started, err := mr.Get("console:till-1:sessionStarted")
	require.NoError(t, err)
	assert.Equal(t, "true", started)

	require.NoError(t, store.Logout(ctx))
	snap = store.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State())
	assert.Equal(t, rbac.RoleNone, snap.Identity.Role)
	assert.Empty(t, snap.Identity.Permissions)
	for _, key := range RecordKeys() {
		assert.False(t, mr.Exists("console:till-1:"+key), key)
	}
}

func TestHydrateSeedsValidRecordOnce(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	first := NewStore(kv, validator())
	require.NoError(t, first.Login(ctx, waiter(), token(t, now.Add(time.Hour))))
	require.NoError(t, first.SetSessionStarted(ctx, true))

	second := NewStore(kv, validator())
	require.NoError(t, second.Hydrate(ctx))
	snap := second.Snapshot()
	assert.Equal(t, StateSessionActive, snap.State())
	assert.Equal(t, "u1", snap.Identity.UserID)
	assert.Equal(t, "Asha", snap.Identity.UserName)
	assert.True(t, snap.Identity.Permissions.Has(rbac.PermPOS))

	// Memory is authoritative after boot: later storage edits are ignored.
	require.NoError(t, kv.Store(ctx, map[string]string{KeyUserRole: "admin"}, nil))
	require.NoError(t, second.Hydrate(ctx))
	assert.Equal(t, rbac.RoleWaiter, second.Snapshot().Identity.Role)
}

func TestHydrateDiscardsExpiredCredential(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Store(ctx, map[string]string{
		KeyAuthToken: token(t, now.Add(-10*time.Second)),
		KeyUserID:    "u1",
		KeyUserRole:  "manager",
	}, nil))

	store := NewStore(kv, validator())
	require.NoError(t, store.Hydrate(ctx))
	assert.Equal(t, StateAnonymous, store.Snapshot().State())
	assert.Zero(t, kv.Len())
}

func TestLoginRejectsExpiredCredential(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv, validator())

	err := store.Login(ctx, waiter(), token(t, now.Add(-time.Second)))
	require.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, StateAnonymous, store.Snapshot().State())
	assert.Zero(t, kv.Len())

	err = store.Login(ctx, rbac.Identity{Role: rbac.RoleWaiter}, token(t, now.Add(time.Hour)))
	require.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestUpdateSelfRoleKeepsState(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV(), validator())
	require.ErrorIs(t, store.UpdateSelfRole(ctx, rbac.RoleCashier, nil), ErrNotAuthenticated)

	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Hour))))
	require.NoError(t, store.UpdateSelfRole(ctx, rbac.RoleCashier, rbac.NewPermissionSet(rbac.PermDues)))
	snap := store.Snapshot()
	assert.Equal(t, StateNoSession, snap.State())
	assert.Equal(t, rbac.RoleCashier, snap.Identity.Role)
	assert.Equal(t, []string{"Dues"}, snap.Identity.Permissions.Strings())
}

func TestListenersObservePersistedState(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv, validator())

	var seen []State
	cancel := store.Subscribe(func(s Snapshot) {
		values, err := kv.Load(ctx, []string{KeyAuthToken})
		require.NoError(t, err)
		assert.Equal(t, s.Credential, values[KeyAuthToken])
		seen = append(seen, s.State())
	})

	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Hour))))
	require.NoError(t, store.SetSessionStarted(ctx, true))
	require.NoError(t, store.Logout(ctx))
	cancel()
	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Hour))))

	assert.Equal(t, []State{StateNoSession, StateSessionActive, StateAnonymous}, seen)
}

func TestWriteFailurePrefersLoggedOut(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	store := NewStore(kv, validator())
	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Hour))))

	kv.failStore = true
	err := store.SetSessionStarted(ctx, true)
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, store.Snapshot().State())
	assert.Zero(t, kv.Len())
}

func TestLogoutResetsMemoryWhenClearFails(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	store := NewStore(kv, validator())
	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Hour))))

	kv.failClear = true
	require.Error(t, store.Logout(ctx))
	assert.Equal(t, StateAnonymous, store.Snapshot().State())
}

func TestInvalidateOnlyDropsUnusableCredential(t *testing.T) {
	ctx := context.Background()
	clock := now
	v := credential.NewValidator(credential.WithClock(func() time.Time { return clock }))
	store := NewStore(NewMemoryKV(), v)
	require.NoError(t, store.Login(ctx, waiter(), token(t, now.Add(time.Minute))))

	require.NoError(t, store.Invalidate(ctx))
	assert.Equal(t, StateNoSession, store.Snapshot().State())

	clock = now.Add(2 * time.Minute)
	require.NoError(t, store.Invalidate(ctx))
	assert.Equal(t, StateAnonymous, store.Snapshot().State())
}

func TestCloseRejectsMutations(t *testing.T) {
	store := NewStore(NewMemoryKV(), validator())
	store.Close()
	require.ErrorIs(t, store.Login(context.Background(), waiter(), token(t, now.Add(time.Hour))), ErrClosed)
}
