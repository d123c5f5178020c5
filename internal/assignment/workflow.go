package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Assignment modes used in logs and metrics.
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

const defaultConcurrency = 4

// Updater issues role updates against the user directory.
type Updater interface {
	UpdateUserRole(ctx context.Context, userID string, upd directory.RoleUpdate) (directory.RoleUpdateResult, error)
}

// Refetcher reloads the cached directory listing after a change.
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// Session is the acting user's auth state.
type Session interface {
	CurrentSubject() rbac.Subject
	UpdateSelfRole(ctx context.Context, role rbac.Role, perms rbac.PermissionSet) error
}

// Recorder counts per-target outcomes.
type Recorder interface {
	ObserveAssignment(mode, outcome string)
}

// Result summarises an applied change.
type Result struct {
	BatchID     string                       `json:"batchId"`
	Mode        string                       `json:"mode"`
	Role        rbac.Role                    `json:"role"`
	Permissions rbac.PermissionSet           `json:"permissions"`
	Updated     []directory.RoleUpdateResult `json:"updated"`
	Failed      []string                     `json:"failed,omitempty"`
	SelfUpdated bool                         `json:"selfUpdated"`
}

// Workflow applies confirmed role changes.
type Workflow struct {
	catalogue   *rbac.Catalogue
	updater     Updater
	refetcher   Refetcher
	session     Session
	recorder    Recorder
	logger      *slog.Logger
	concurrency int
}

// Config wires the workflow collaborators. Refetcher and Recorder are optional.
type Config struct {
	Catalogue   *rbac.Catalogue
	Updater     Updater
	Refetcher   Refetcher
	Session     Session
	Recorder    Recorder
	Logger      *slog.Logger
	Concurrency int
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(cfg Config) *Workflow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Workflow{
		catalogue:   cfg.Catalogue,
		updater:     cfg.Updater,
		refetcher:   cfg.Refetcher,
		session:     cfg.Session,
		recorder:    cfg.Recorder,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Prepare opens the confirmation for role.
func (w *Workflow) Prepare(role rbac.Role) (*Confirmation, error) {
	def, ok := w.catalogue.Definition(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", rbac.ErrUnknownRole, role)
	}
	return NewConfirmation(def), nil
}

// ApplySingle updates one user. On failure the target is left unchanged and
// the directory error is returned.
func (w *Workflow) ApplySingle(ctx context.Context, userID string, conf *Confirmation) (Result, error) {
	if userID == "" {
		return Result{}, ErrNoTargets
	}
	upd, err := confirmed(conf)
	if err != nil {
		return Result{}, err
	}
	res := w.newResult(ModeSingle, upd)
	logger := w.logger.With(slog.String("batch_id", res.BatchID), slog.String("mode", ModeSingle))

	out, err := w.updateOne(ctx, userID, upd)
	if err != nil {
		w.observe(ModeSingle, "failure")
		logger.Warn("role update failed", slog.String("user_id", userID), slog.Any("error", err))
		return Result{}, fmt.Errorf("assignment: update %s: %w", userID, err)
	}
	w.observe(ModeSingle, "success")
	res.Updated = append(res.Updated, out)
	res.SelfUpdated = w.applySelf(ctx, logger, res.Updated)
	w.refetch(ctx, logger)
	logger.Info("role updated", slog.String("user_id", userID), slog.String("role", string(upd.Role)))
	return res, nil
}

// ApplyBulk updates every listed user independently with bounded fan-out.
// The batch is not atomic: targets that succeed stay updated when others
// fail, and a *BulkPartialFailure names the failed ones. No target is
// retried or rolled back.
func (w *Workflow) ApplyBulk(ctx context.Context, userIDs []string, conf *Confirmation) (Result, error) {
	targets := uniqueIDs(userIDs)
	if len(targets) == 0 {
		return Result{}, ErrNoTargets
	}
	upd, err := confirmed(conf)
	if err != nil {
		return Result{}, err
	}
	res := w.newResult(ModeBulk, upd)
	logger := w.logger.With(slog.String("batch_id", res.BatchID), slog.String("mode", ModeBulk))

	outcomes := make([]directory.RoleUpdateResult, len(targets))
	failures := make([]error, len(targets))
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for i, id := range targets {
		g.Go(func() error {
			out, err := w.updateOne(ctx, id, upd)
			if err != nil {
				failures[i] = err
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	partial := &BulkPartialFailure{BatchID: res.BatchID}
	for i, id := range targets {
		if failures[i] != nil {
			w.observe(ModeBulk, "failure")
			logger.Warn("role update failed", slog.String("user_id", id), slog.Any("error", failures[i]))
			partial.Failed = append(partial.Failed, TargetError{UserID: id, Err: failures[i]})
			res.Failed = append(res.Failed, id)
			continue
		}
		w.observe(ModeBulk, "success")
		partial.Succeeded = append(partial.Succeeded, id)
		res.Updated = append(res.Updated, outcomes[i])
	}

	if len(res.Updated) > 0 {
		res.SelfUpdated = w.applySelf(ctx, logger, res.Updated)
		w.refetch(ctx, logger)
	}
	logger.Info("bulk role update finished",
		slog.Int("targets", len(targets)),
		slog.Int("failed", len(partial.Failed)),
		slog.String("role", string(upd.Role)))
	if len(partial.Failed) > 0 {
		return res, partial
	}
	return res, nil
}

func (w *Workflow) updateOne(ctx context.Context, userID string, upd directory.RoleUpdate) (directory.RoleUpdateResult, error) {
	body := directory.RoleUpdate{Role: upd.Role, Permissions: upd.Permissions.Clone()}
	out, err := w.updater.UpdateUserRole(ctx, userID, body)
	if err != nil {
		return directory.RoleUpdateResult{}, err
	}
	if out.ID == "" {
		out.ID = userID
	}
	if out.Role == rbac.RoleNone {
		out.Role = upd.Role
	}
	if out.Permissions == nil {
		out.Permissions = upd.Permissions.Clone()
	}
	return out, nil
}

// applySelf mirrors a change to the acting user into the local session.
func (w *Workflow) applySelf(ctx context.Context, logger *slog.Logger, updated []directory.RoleUpdateResult) bool {
	if w.session == nil {
		return false
	}
	self := w.session.CurrentSubject().Identity.UserID
	if self == "" {
		return false
	}
	for _, out := range updated {
		if out.ID != self {
			continue
		}
		if err := w.session.UpdateSelfRole(ctx, out.Role, out.Permissions); err != nil {
			logger.Warn("apply own role change", slog.Any("error", err))
			return false
		}
		return true
	}
	return false
}

func (w *Workflow) refetch(ctx context.Context, logger *slog.Logger) {
	if w.refetcher == nil {
		return
	}
	if err := w.refetcher.Refetch(ctx); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		logger.Log(ctx, level, "refetch directory", slog.Any("error", err))
	}
}

func (w *Workflow) newResult(mode string, upd directory.RoleUpdate) Result {
	return Result{
		BatchID:     uuid.NewString(),
		Mode:        mode,
		Role:        upd.Role,
		Permissions: upd.Permissions.Clone(),
	}
}

func (w *Workflow) observe(mode, outcome string) {
	if w.recorder != nil {
		w.recorder.ObserveAssignment(mode, outcome)
	}
}

func confirmed(conf *Confirmation) (directory.RoleUpdate, error) {
	if conf == nil || !conf.CanConfirm() {
		return directory.RoleUpdate{}, ErrConfirmationIncomplete
	}
	return directory.RoleUpdate{Role: conf.Role(), Permissions: conf.Selected()}, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
