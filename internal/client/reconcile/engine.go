package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/client"
	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/logging"
	"github.com/dmitrijs2005/evorun/internal/metrics"
)

var (
	ErrSyncInProgress = errors.New("reconciliation already in progress")
	ErrNoSession      = errors.New("reconciliation needs an online session")
)

// errDeferred stops a run because the server stopped answering.
var errDeferred = errors.New("server unreachable")

// Store is the part of the local mirror the engine works on.
type Store interface {
	GetProfile(ctx context.Context, email string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile, dirty bool) error

	ListDirtyWorkouts(ctx context.Context, email string) ([]*models.Workout, error)
	ListPendingDeletions(ctx context.Context, email string) ([]*models.Workout, error)
	MarkWorkoutSynced(ctx context.Context, localID, remoteID int64) error
	DeleteWorkout(ctx context.Context, localID int64) error
	UpsertWorkout(ctx context.Context, w *models.Workout) (bool, error)
	PruneWorkouts(ctx context.Context, email string, keep []int64) (int64, error)

	SetLastSyncAt(ctx context.Context, t time.Time) error
}

type Engine struct {
	store   Store
	client  client.Client
	logger  logging.Logger
	running atomic.Bool
	now     func() time.Time
}

func NewEngine(store Store, c client.Client, logger logging.Logger) *Engine {
	return &Engine{store: store, client: c, logger: logger, now: time.Now}
}

// Reconcile runs all phases for the session's account. A deferred run is not
// an error: the report says so and the caller may retry later.
func (e *Engine) Reconcile(ctx context.Context, sess *session.Session) (*Report, error) {
	if !sess.CanSync() {
		return nil, ErrNoSession
	}
	if !e.running.CompareAndSwap(false, true) {
		metrics.RecordSyncRun("busy")
		return nil, ErrSyncInProgress
	}
	defer e.running.Store(false)

	r := &Report{StartedAt: e.now()}
	log := e.logger.With("email", sess.Email)

	err := e.run(ctx, sess, r, log)
	if errors.Is(err, errDeferred) {
		r.Deferred = true
		err = nil
	}
	r.FinishedAt = e.now()

	e.record(ctx, r, err, log)
	return r, err
}

func (e *Engine) run(ctx context.Context, sess *session.Session, r *Report, log logging.Logger) error {
	if err := e.pushProfile(ctx, sess, r, log); err != nil {
		return err
	}

	deferred := false
	if err := e.pushWorkouts(ctx, sess, r, log); err != nil {
		if !errors.Is(err, errDeferred) {
			return err
		}
		deferred = true
	}

	// local-only removals happen even when the server went away
	if err := e.pushDeletions(ctx, sess, r, log, deferred); err != nil {
		return err
	}
	if deferred {
		return errDeferred
	}

	if err := e.pull(ctx, sess, r, log); err != nil {
		return err
	}

	if err := e.store.SetLastSyncAt(ctx, r.StartedAt); err != nil {
		return err
	}
	return nil
}

func (e *Engine) pushProfile(ctx context.Context, sess *session.Session, r *Report, log logging.Logger) error {
	p, err := e.store.GetProfile(ctx, sess.Email)
	if err != nil {
		return err
	}
	if p == nil || !p.Dirty {
		return nil
	}

	rp, err := e.client.PushProfile(ctx, sess.Token, client.ProfileFieldsFrom(p))
	if err != nil {
		return e.remoteFailure(ctx, "profile push", err, r, log)
	}

	m := rp.ToModel()
	m.Email = sess.Email
	if err := e.store.UpsertProfile(ctx, m, false); err != nil {
		return err
	}
	sess.Profile = m
	r.ProfilePushed = true
	return nil
}

func (e *Engine) pushWorkouts(ctx context.Context, sess *session.Session, r *Report, log logging.Logger) error {
	dirty, err := e.store.ListDirtyWorkouts(ctx, sess.Email)
	if err != nil {
		return err
	}

	for _, w := range dirty {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.RemoteID == nil {
			err = e.create(ctx, sess, w, r, log)
		} else {
			err = e.update(ctx, sess, w, r, log)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) create(ctx context.Context, sess *session.Session, w *models.Workout, r *Report, log logging.Logger) error {
	rw, err := e.client.CreateWorkout(ctx, sess.Token, client.PayloadFrom(w), w.ClientRef)
	if err != nil {
		return e.remoteFailure(ctx, "workout create", err, r, log, "local_id", w.LocalID)
	}
	// the remote id is recorded before anything else can fail
	if err := e.store.MarkWorkoutSynced(ctx, w.LocalID, rw.ID); err != nil {
		return err
	}
	r.Created++
	log.Debug(ctx, "workout created", "local_id", w.LocalID, "remote_id", rw.ID)
	return nil
}

func (e *Engine) update(ctx context.Context, sess *session.Session, w *models.Workout, r *Report, log logging.Logger) error {
	_, err := e.client.UpdateWorkout(ctx, sess.Token, *w.RemoteID, client.PayloadFrom(w))
	switch {
	case errors.Is(err, client.ErrNotFound):
		if err := e.store.DeleteWorkout(ctx, w.LocalID); err != nil {
			return err
		}
		r.Vanished++
		log.Info(ctx, "workout deleted remotely, dropping local copy", "local_id", w.LocalID, "remote_id", *w.RemoteID)
		return nil
	case err != nil:
		return e.remoteFailure(ctx, "workout update", err, r, log, "local_id", w.LocalID)
	}

	if err := e.store.MarkWorkoutSynced(ctx, w.LocalID, *w.RemoteID); err != nil {
		return err
	}
	r.Updated++
	return nil
}

// pushDeletions removes rows flagged for deletion. With skipRemote set only
// rows the server never saw are handled.
func (e *Engine) pushDeletions(ctx context.Context, sess *session.Session, r *Report, log logging.Logger, skipRemote bool) error {
	pending, err := e.store.ListPendingDeletions(ctx, sess.Email)
	if err != nil {
		return err
	}

	gone := false
	for _, w := range pending {
		if w.RemoteID == nil {
			if err := e.store.DeleteWorkout(ctx, w.LocalID); err != nil {
				return err
			}
			r.DeletedLocal++
			continue
		}
		if skipRemote || gone {
			continue
		}

		err := e.client.DeleteWorkout(ctx, sess.Token, *w.RemoteID)
		if err != nil && !errors.Is(err, client.ErrNotFound) {
			ferr := e.remoteFailure(ctx, "workout delete", err, r, log, "local_id", w.LocalID)
			if errors.Is(ferr, errDeferred) {
				gone = true
				continue
			}
			if ferr != nil {
				return ferr
			}
			continue
		}
		if err := e.store.DeleteWorkout(ctx, w.LocalID); err != nil {
			return err
		}
		r.DeletedRemote++
	}

	if gone {
		return errDeferred
	}
	return nil
}

func (e *Engine) pull(ctx context.Context, sess *session.Session, r *Report, log logging.Logger) error {
	if err := e.pullWorkouts(ctx, sess, r, log); err != nil {
		return err
	}

	local, err := e.store.GetProfile(ctx, sess.Email)
	if err != nil {
		return err
	}
	if local != nil && local.Dirty {
		return nil
	}

	rp, err := e.client.FetchProfile(ctx, sess.Token)
	if err != nil {
		return e.remoteFailure(ctx, "profile pull", err, r, log)
	}
	m := rp.ToModel()
	m.Email = sess.Email
	if err := e.store.UpsertProfile(ctx, m, false); err != nil {
		return err
	}
	sess.Profile = m
	r.ProfilePulled = true
	return nil
}

func (e *Engine) pullWorkouts(ctx context.Context, sess *session.Session, r *Report, log logging.Logger) error {
	remote, err := e.client.FetchWorkouts(ctx, sess.Token)
	if err != nil {
		return e.remoteFailure(ctx, "workout pull", err, r, log)
	}

	keep := make([]int64, 0, len(remote))
	for i := range remote {
		written, err := e.store.UpsertWorkout(ctx, remote[i].ToModel(sess.Email))
		if err != nil {
			return err
		}
		if written {
			r.Pulled++
		}
		keep = append(keep, remote[i].ID)
	}

	pruned, err := e.store.PruneWorkouts(ctx, sess.Email, keep)
	if err != nil {
		return err
	}
	r.Pruned = int(pruned)
	return nil
}

// remoteFailure decides what a failed remote call means for the run: nil to
// carry on (the failure is counted), errDeferred when the server is gone,
// or an error that aborts the run.
func (e *Engine) remoteFailure(ctx context.Context, step string, err error, r *Report, log logging.Logger, args ...any) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	args = append(args, "step", step, "error", err)
	switch client.Classify(err) {
	case client.OutcomeUnreachable:
		log.Info(ctx, "server unreachable, sync deferred", args...)
		return errDeferred
	case client.OutcomeRejected:
		log.Warn(ctx, "server rejected the session", args...)
		return fmt.Errorf("%s: %w", step, err)
	default:
		r.Failed++
		log.Warn(ctx, "remote call failed, will retry next sync", args...)
		return nil
	}
}

func (e *Engine) record(ctx context.Context, r *Report, err error, log logging.Logger) {
	switch {
	case err != nil:
		metrics.RecordSyncRun("failed")
		log.Error(ctx, "sync failed", "error", err)
	case r.Deferred:
		metrics.RecordSyncRun("deferred")
		log.Info(ctx, "sync deferred", "report", r.String())
	default:
		metrics.RecordSyncRun("completed")
		metrics.RecordSyncCompleted(r.FinishedAt)
		log.Info(ctx, "sync completed", "report", r.String())
	}

	metrics.AddSyncRows("push", "created", r.Created)
	metrics.AddSyncRows("push", "updated", r.Updated)
	metrics.AddSyncRows("push", "vanished", r.Vanished)
	metrics.AddSyncRows("delete", "remote", r.DeletedRemote)
	metrics.AddSyncRows("delete", "local", r.DeletedLocal)
	metrics.AddSyncRows("pull", "upserted", r.Pulled)
	metrics.AddSyncRows("pull", "pruned", r.Pruned)
	metrics.AddSyncRows("any", "failed", r.Failed)
}
