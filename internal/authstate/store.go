// Package authstate holds the canonical in-memory auth state of the console
// and writes every mutation through to a persisted record.
package authstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

var (
	// ErrNotAuthenticated is returned by operations that need a credential.
	ErrNotAuthenticated = errors.New("authstate: not authenticated")
	// ErrInvalidCredential is returned when a credential fails the expiry check.
	ErrInvalidCredential = errors.New("authstate: credential invalid or expired")
	// ErrInvalidIdentity is returned when a login carries no user id.
	ErrInvalidIdentity = errors.New("authstate: identity missing user id")
	// ErrStaleRefresh is returned when a refresh resolves after the session it
	// was issued under has ended.
	ErrStaleRefresh = errors.New("authstate: stale refresh discarded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("authstate: store closed")
)

// State is the position in the auth state machine.
type State int

const (
	StateAnonymous State = iota
	StateNoSession
	StateSessionActive
)

// String returns a readable name.
func (s State) String() string {
	switch s {
	case StateNoSession:
		return "authenticated_no_session"
	case StateSessionActive:
		return "authenticated_session_active"
	default:
		return "anonymous"
	}
}

// Snapshot is an immutable copy of the auth state.
type Snapshot struct {
	Credential     string
	SessionStarted bool
	Identity       rbac.Identity
	// Generation changes on every login, logout and invalidation.
	Generation uint64
	// Revision changes whenever the role or permissions of the current
	// session change.
	Revision uint64
}

// State derives the state machine position.
func (s Snapshot) State() State {
	switch {
	case s.Credential == "":
		return StateAnonymous
	case s.SessionStarted:
		return StateSessionActive
	default:
		return StateNoSession
	}
}

// Subject returns the guard view of the snapshot.
func (s Snapshot) Subject() rbac.Subject {
	return rbac.Subject{
		Credential:     s.Credential,
		SessionStarted: s.SessionStarted,
		Identity:       s.Identity.Clone(),
	}
}

func (s Snapshot) clone() Snapshot {
	s.Identity = s.Identity.Clone()
	return s
}

func anonymous(generation uint64) Snapshot {
	return Snapshot{
		Identity:   rbac.Identity{Role: rbac.RoleNone, Permissions: rbac.NewPermissionSet()},
		Generation: generation,
	}
}

// Listener receives the new snapshot after each mutation. Listeners run on
// the mutating goroutine and must not call mutating store operations.
type Listener func(Snapshot)

// Store is the single canonical auth state.
type Store struct {
	kv        KV
	validator rbac.CredentialChecker
	logger    *slog.Logger

	// writeMu serialises mutations across compute, persist, publish and notify.
	writeMu sync.Mutex

	mu        sync.RWMutex
	current   Snapshot
	listeners map[int]Listener
	nextID    int
	hydrated  bool
	closed    bool
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore constructs an anonymous Store. Call Hydrate once at startup.
func NewStore(kv KV, validator rbac.CredentialChecker, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		validator: validator,
		logger:    slog.Default(),
		current:   anonymous(0),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Hydrate seeds memory from the persisted record. It runs once; later calls
// are no-ops. An invalid or expired credential is treated as absent and the
// record is cleared.
func (s *Store) Hydrate(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	s.hydrated = true
	s.mu.Unlock()

	values, err := s.kv.Load(ctx, RecordKeys())
	if err != nil {
		return fmt.Errorf("authstate: hydrate: %w", err)
	}
	snap, err := decodeRecord(values)
	if err != nil {
		s.logger.Warn("discarding unreadable auth record", slog.Any("error", err))
		return s.clearLocked(ctx)
	}
	if snap.Credential == "" {
		if len(values) > 0 {
			return s.clearLocked(ctx)
		}
		return nil
	}
	if !s.validator.IsValid(snap.Credential) {
		s.logger.Info("persisted credential expired, starting anonymous")
		return s.clearLocked(ctx)
	}
	snap.Generation = s.generation() + 1
	s.publish(snap)
	return nil
}

// Login moves the store into Authenticated(NoSession) for identity.
func (s *Store) Login(ctx context.Context, identity rbac.Identity, credential string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}
	if identity.UserID == "" {
		return ErrInvalidIdentity
	}
	if !s.validator.IsValid(credential) {
		if err := s.logoutLocked(ctx); err != nil {
			s.logger.Warn("clear after rejected login", slog.Any("error", err))
		}
		return ErrInvalidCredential
	}
	next := Snapshot{
		Credential: credential,
		Identity:   identity.Clone(),
		Generation: s.generation() + 1,
	}
	if next.Identity.Permissions == nil {
		next.Identity.Permissions = rbac.NewPermissionSet()
	}
	if err := s.persist(ctx, next); err != nil {
		return s.failClosed(ctx, err)
	}
	s.publish(next)
	return nil
}

// Logout clears the full persisted key set and returns to Anonymous. Memory
// is reset even when clearing storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}
	return s.logoutLocked(ctx)
}

// Invalidate returns to Anonymous when the held credential no longer passes
// the expiry check. A valid credential is left untouched.
func (s *Store) Invalidate(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}
	cur := s.read()
	if cur.Credential == "" || s.validator.IsValid(cur.Credential) {
		return nil
	}
	s.logger.Info("credential invalid, forcing logout", slog.String("user_id", cur.Identity.UserID))
	return s.logoutLocked(ctx)
}

// SetSessionStarted records whether the actor has passed the login-activity
// checkpoint.
func (s *Store) SetSessionStarted(ctx context.Context, started bool) error {
	return s.mutate(ctx, func(next *Snapshot) {
		next.SessionStarted = started
	})
}

// UpdateSelfRole replaces the acting user's role and permissions without
// changing the state machine position.
func (s *Store) UpdateSelfRole(ctx context.Context, role rbac.Role, perms rbac.PermissionSet) error {
	return s.mutate(ctx, func(next *Snapshot) {
		next.Identity.Role = role
		next.Identity.Permissions = perms.Clone()
		next.Revision++
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	return s.read()
}

// CurrentSubject satisfies rbac.SubjectSource.
func (s *Store) CurrentSubject() rbac.Subject {
	return s.read().Subject()
}

// Subscribe registers a listener and returns its cancel function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || l == nil {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close drops all listeners and rejects further mutations. The persisted
// record is left as is so the next process can hydrate from it.
func (s *Store) Close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = make(map[int]Listener)
}

func (s *Store) mutate(ctx context.Context, apply func(next *Snapshot)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.mutateLocked(ctx, nil, apply)
}

// mutateLocked runs with writeMu held. check may veto the mutation against
// the current snapshot before anything is written.
func (s *Store) mutateLocked(ctx context.Context, check func(cur Snapshot) error, apply func(next *Snapshot)) error {
	if s.isClosed() {
		return ErrClosed
	}
	cur := s.read()
	if check != nil {
		if err := check(cur); err != nil {
			return err
		}
	}
	if cur.Credential == "" {
		return ErrNotAuthenticated
	}
	if !s.validator.IsValid(cur.Credential) {
		if err := s.logoutLocked(ctx); err != nil {
			s.logger.Warn("clear after expired credential", slog.Any("error", err))
		}
		return ErrInvalidCredential
	}
	next := cur.clone()
	apply(&next)
	if err := s.persist(ctx, next); err != nil {
		return s.failClosed(ctx, err)
	}
	s.publish(next)
	return nil
}

func (s *Store) logoutLocked(ctx context.Context) error {
	next := anonymous(s.generation() + 1)
	err := s.kv.Clear(ctx, RecordKeys())
	s.publish(next)
	if err != nil {
		return fmt.Errorf("authstate: logout: %w", err)
	}
	return nil
}

func (s *Store) clearLocked(ctx context.Context) error {
	if err := s.kv.Clear(ctx, RecordKeys()); err != nil {
		return fmt.Errorf("authstate: clear record: %w", err)
	}
	return nil
}

// failClosed resolves a failed write-through in favour of Anonymous.
func (s *Store) failClosed(ctx context.Context, cause error) error {
	s.logger.Error("auth record write failed, forcing logout", slog.Any("error", cause))
	if err := s.logoutLocked(ctx); err != nil {
		s.logger.Warn("clear after failed write", slog.Any("error", err))
	}
	return fmt.Errorf("authstate: persist: %w", cause)
}

func (s *Store) persist(ctx context.Context, snap Snapshot) error {
	values, remove, err := encodeRecord(snap)
	if err != nil {
		return err
	}
	return s.kv.Store(ctx, values, remove)
}

func (s *Store) publish(next Snapshot) {
	s.mu.Lock()
	s.current = next.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(next.clone())
	}
}

func (s *Store) read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Generation
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
