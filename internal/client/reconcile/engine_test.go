package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/client"
	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/client/store"
	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/logging"
	"github.com/dmitrijs2005/evorun/internal/workout"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const email = "runner@example.com"

var when = time.Date(2025, 4, 1, 7, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	st     *store.Store
	srv    *fakeServer
	engine *Engine
	sess   *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := newFakeServer(email)
	return &fixture{
		st:     st,
		srv:    srv,
		engine: NewEngine(st, srv, logging.Discard()),
		sess:   session.NewOnline(email, "tok", nil),
	}
}

func (f *fixture) addLocal(t *testing.T, minutes int) int64 {
	t.Helper()
	id, err := f.st.InsertWorkout(context.Background(), &models.Workout{
		OwnerEmail:      email,
		ClientRef:       uuid.NewString(),
		Type:            workout.TypeRunning,
		Date:            when,
		DurationMinutes: ptr(minutes),
		DistanceKm:      ptr(5.0),
		Details:         json.RawMessage(`{"elevation_level":1}`),
		Dirty:           true,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) get(t *testing.T, localID int64) *models.Workout {
	t.Helper()
	w, err := f.st.GetWorkout(context.Background(), email, localID)
	require.NoError(t, err)
	return w
}

func (f *fixture) reconcile(t *testing.T) *Report {
	t.Helper()
	r, err := f.engine.Reconcile(context.Background(), f.sess)
	require.NoError(t, err)
	return r
}

func unreachable(ops ...string) func(string) error {
	return func(op string) error {
		for _, o := range ops {
			if o == op || o == "*" {
				return client.ErrUnavailable
			}
		}
		return nil
	}
}

func TestReconcile_FirstPushRecordsRemoteID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// burn local ids 1..6 so the new row gets 7
	for i := 0; i < 6; i++ {
		id := f.addLocal(t, 1)
		require.NoError(t, f.st.DeleteWorkout(ctx, id))
	}
	localID := f.addLocal(t, 30)
	require.Equal(t, int64(7), localID)
	f.srv.nextID = 42

	r := f.reconcile(t)
	assert.Equal(t, 1, r.Created)
	assert.False(t, r.Deferred)

	w := f.get(t, 7)
	require.NotNil(t, w.RemoteID)
	assert.Equal(t, int64(42), *w.RemoteID)
	assert.False(t, w.Dirty)

	list, err := f.st.ListWorkouts(ctx, email)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	last, err := f.st.LastSyncAt(ctx)
	require.NoError(t, err)
	assert.False(t, last.IsZero())
}

func TestReconcile_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, 30)
	f.addLocal(t, 40)

	f.reconcile(t)
	pushes := f.srv.pushes()
	pulls := f.srv.count("fetch_workouts")

	r := f.reconcile(t)
	assert.Equal(t, pushes, f.srv.pushes())
	assert.Equal(t, pulls+1, f.srv.count("fetch_workouts"))
	assert.Zero(t, r.Pushed())
	assert.Equal(t, 2, f.srv.remoteCount())
}

func TestReconcile_UnreachableMidPushStopsAndDefers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.addLocal(t, 10)
	second := f.addLocal(t, 20)
	neverPushed := f.addLocal(t, 5)
	require.NoError(t, f.st.MarkPendingDeletion(ctx, neverPushed))

	f.srv.fail = func(op string) error {
		if op == "create_workout" && f.srv.calls[op] > 1 {
			return client.ErrUnavailable
		}
		return nil
	}

	r := f.reconcile(t)
	assert.True(t, r.Deferred)
	assert.Equal(t, 1, r.Created)
	assert.Equal(t, 1, r.DeletedLocal)
	assert.Zero(t, f.srv.count("fetch_workouts"))

	assert.False(t, f.get(t, first).Dirty)
	assert.True(t, f.get(t, second).Dirty)
	pending, err := f.st.ListPendingDeletions(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, pending)

	last, err := f.st.LastSyncAt(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	f.srv.fail = nil
	r = f.reconcile(t)
	assert.False(t, r.Deferred)
	assert.Equal(t, 1, r.Created)
	assert.False(t, f.get(t, second).Dirty)
	assert.Equal(t, 2, f.srv.remoteCount())
}

func TestReconcile_LostCreateAnswerDoesNotDuplicate(t *testing.T) {
	f := newFixture(t)
	id := f.addLocal(t, 30)

	f.srv.failAfter = unreachable("create_workout")
	r := f.reconcile(t)
	assert.True(t, r.Deferred)
	assert.Equal(t, 1, f.srv.remoteCount())
	assert.True(t, f.get(t, id).Dirty)

	f.srv.failAfter = nil
	f.reconcile(t)
	f.reconcile(t)

	assert.Equal(t, 1, f.srv.remoteCount())
	w := f.get(t, id)
	assert.False(t, w.Dirty)
	assert.Equal(t, int64(1), *w.RemoteID)

	list, err := f.st.ListWorkouts(context.Background(), email)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReconcile_DeletionConverges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.addLocal(t, 10)
	b := f.addLocal(t, 20)
	f.reconcile(t)
	require.Equal(t, 2, f.srv.remoteCount())

	// b disappears remotely before we get to delete it
	delete(f.srv.workouts, *f.get(t, b).RemoteID)

	require.NoError(t, f.st.MarkPendingDeletion(ctx, a))
	require.NoError(t, f.st.MarkPendingDeletion(ctx, b))

	r := f.reconcile(t)
	assert.Equal(t, 2, r.DeletedRemote)
	assert.Zero(t, f.srv.remoteCount())

	for _, id := range []int64{a, b} {
		_, err := f.st.GetWorkout(ctx, email, id)
		require.ErrorIs(t, err, common.ErrorNotFound)
	}
	pending, err := f.st.ListPendingDeletions(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReconcile_DeletionUnreachableKeepsRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addLocal(t, 10)
	f.reconcile(t)
	require.NoError(t, f.st.MarkPendingDeletion(ctx, id))

	pulls := f.srv.count("fetch_workouts")
	f.srv.fail = unreachable("delete_workout")
	r := f.reconcile(t)
	assert.True(t, r.Deferred)
	assert.Equal(t, pulls, f.srv.count("fetch_workouts"))

	pending, err := f.st.ListPendingDeletions(ctx, email)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	f.srv.fail = nil
	f.reconcile(t)
	pending, err = f.st.ListPendingDeletions(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Zero(t, f.srv.remoteCount())
}

func TestReconcile_PullOverwritesCleanRows(t *testing.T) {
	f := newFixture(t)
	id := f.addLocal(t, 30)
	f.reconcile(t)

	rid := *f.get(t, id).RemoteID
	w := f.srv.workouts[rid]
	w.DurationMinutes = ptr(55)
	f.srv.workouts[rid] = w

	f.srv.workouts[99] = client.RemoteWorkout{ID: 99, WorkoutPayload: client.WorkoutPayload{
		WorkoutType: workout.TypeCycling, WorkoutDate: when, Details: json.RawMessage(`{"elevation_level":0}`),
	}}

	r := f.reconcile(t)
	assert.Equal(t, 2, r.Pulled)
	assert.Equal(t, 55, *f.get(t, id).DurationMinutes)

	list, err := f.st.ListWorkouts(context.Background(), email)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReconcile_ServerErrorKeepsRowDirtyAndPullDoesNotClobber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addLocal(t, 30)
	f.reconcile(t)

	w := f.get(t, id)
	w.DurationMinutes = ptr(75)
	require.NoError(t, f.st.UpdateWorkout(ctx, w))

	f.srv.fail = func(op string) error {
		if op == "update_workout" {
			return &client.ServerError{StatusCode: 500}
		}
		return nil
	}
	pulls := f.srv.count("fetch_workouts")
	r := f.reconcile(t)
	assert.Equal(t, 1, r.Failed)
	assert.False(t, r.Deferred)
	assert.Equal(t, pulls+1, f.srv.count("fetch_workouts"))

	got := f.get(t, id)
	assert.True(t, got.Dirty)
	assert.Equal(t, 75, *got.DurationMinutes)

	f.srv.fail = nil
	f.reconcile(t)
	assert.Equal(t, 75, *f.srv.workouts[*got.RemoteID].DurationMinutes)
	assert.False(t, f.get(t, id).Dirty)
}

func TestReconcile_UpdateOfRemotelyDeletedRowDropsLocalCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addLocal(t, 30)
	f.reconcile(t)
	w := f.get(t, id)
	delete(f.srv.workouts, *w.RemoteID)

	w.DurationMinutes = ptr(31)
	require.NoError(t, f.st.UpdateWorkout(ctx, w))

	r := f.reconcile(t)
	assert.Equal(t, 1, r.Vanished)
	_, err := f.st.GetWorkout(ctx, email, id)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReconcile_PullPrunesRowsDeletedElsewhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep := f.addLocal(t, 10)
	gone := f.addLocal(t, 20)
	f.reconcile(t)
	delete(f.srv.workouts, *f.get(t, gone).RemoteID)

	r := f.reconcile(t)
	assert.Equal(t, 1, r.Pruned)
	_, err := f.st.GetWorkout(ctx, email, gone)
	require.ErrorIs(t, err, common.ErrorNotFound)
	f.get(t, keep)
}

func TestReconcile_DirtyProfilePushedThenPulled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.st.UpsertProfile(ctx, &models.Profile{
		Email: email, FullName: "Ann", Age: ptr(30), WeightKg: ptr(60), HeightCm: ptr(165), TrainingDaysPerWeek: ptr(3),
	}, true))

	r := f.reconcile(t)
	assert.True(t, r.ProfilePushed)
	assert.True(t, r.ProfilePulled)

	p, err := f.st.GetProfile(ctx, email)
	require.NoError(t, err)
	assert.False(t, p.Dirty)
	assert.Equal(t, "Ann", p.FullName)
	require.NotNil(t, f.sess.Profile)
	assert.True(t, f.sess.Profile.Complete())
}

func TestReconcile_ProfilePushUnreachableAbortsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.st.UpsertProfile(ctx, &models.Profile{Email: email, FullName: "Ann"}, true))
	f.addLocal(t, 10)

	f.srv.fail = unreachable("push_profile")
	r := f.reconcile(t)
	assert.True(t, r.Deferred)
	assert.Zero(t, f.srv.count("create_workout"))
	assert.Zero(t, f.srv.count("fetch_workouts"))

	p, err := f.st.GetProfile(ctx, email)
	require.NoError(t, err)
	assert.True(t, p.Dirty)
}

func TestReconcile_DirtyProfileIsNotOverwrittenByPull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.st.UpsertProfile(ctx, &models.Profile{Email: email, FullName: "Local"}, true))
	f.srv.fail = func(op string) error {
		if op == "push_profile" {
			return &client.ServerError{StatusCode: 422}
		}
		return nil
	}

	r := f.reconcile(t)
	assert.Equal(t, 1, r.Failed)
	assert.False(t, r.ProfilePulled)
	assert.Zero(t, f.srv.count("fetch_profile"))

	p, err := f.st.GetProfile(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "Local", p.FullName)
	assert.True(t, p.Dirty)
}

func TestReconcile_RejectedTokenAborts(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, 10)
	f.srv.fail = func(op string) error {
		if op == "create_workout" {
			return client.ErrUnauthorized
		}
		return nil
	}

	_, err := f.engine.Reconcile(context.Background(), f.sess)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Zero(t, f.srv.count("fetch_workouts"))
}

func TestReconcile_LocalStoreErrorIsFatal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Close())

	_, err := f.engine.Reconcile(context.Background(), f.sess)
	require.ErrorIs(t, err, store.ErrLocalStore)
}

func TestReconcile_RequiresOnlineSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Reconcile(context.Background(), session.NewOffline(email, nil))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestReconcile_NotReentrant(t *testing.T) {
	f := newFixture(t)
	f.engine.running.Store(true)

	_, err := f.engine.Reconcile(context.Background(), f.sess)
	require.ErrorIs(t, err, ErrSyncInProgress)

	f.engine.running.Store(false)
	_, err = f.engine.Reconcile(context.Background(), f.sess)
	require.NoError(t, err)
}

func TestReconcile_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Reconcile(ctx, f.sess)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestReport_String(t *testing.T) {
	r := &Report{Created: 1, DeletedLocal: 2, Deferred: true}
	assert.Equal(t, "created=1 updated=0 deleted=2 pulled=0 failed=0 (deferred: server unreachable)", r.String())
	assert.Equal(t, 1, r.Pushed())
}
