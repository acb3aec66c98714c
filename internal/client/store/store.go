// Package store is the local mirror of the account: a single SQLite file
// holding the cached profile, cached workouts and a few settings.
//
// Open acquires the database and applies the embedded migrations; Close
// releases it. Every method is one atomic statement. Errors are wrapped with
// ErrLocalStore so callers can tell a broken mirror from a remote failure.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/migrations"
	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evorun/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/evorun/internal/client/repositories/workouts"
	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/filex"

	_ "modernc.org/sqlite"
)

// ErrLocalStore marks failures of the local database.
var ErrLocalStore = errors.New("local store")

type Store struct {
	db       *sql.DB
	profiles profiles.Repository
	workouts workouts.Repository
	metadata metadata.Repository
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, wrap(err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrap(err)
	}
	// one writer; also keeps a ":memory:" database alive across calls
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, wrap(err)
	}

	return &Store{
		db:       db,
		profiles: profiles.NewSQLiteRepository(db),
		workouts: workouts.NewSQLiteRepository(db),
		metadata: metadata.NewSQLiteRepository(db),
	}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return wrap(err)
	}
	return nil
}

// DB exposes the handle for diagnostics and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) UpsertProfile(ctx context.Context, p *models.Profile, dirty bool) error {
	return wrap(s.profiles.Upsert(ctx, p, dirty))
}

// GetProfile returns (nil, nil) when nothing is cached for email.
func (s *Store) GetProfile(ctx context.Context, email string) (*models.Profile, error) {
	p, err := s.profiles.Get(ctx, email)
	return p, wrap(err)
}

func (s *Store) InsertWorkout(ctx context.Context, w *models.Workout) (int64, error) {
	id, err := s.workouts.Insert(ctx, w)
	return id, wrap(err)
}

// UpsertWorkout stores a server copy keyed by its remote id. The bool is false
// when a dirty or pending local row was left alone.
func (s *Store) UpsertWorkout(ctx context.Context, w *models.Workout) (bool, error) {
	if w.RemoteID == nil {
		return false, fmt.Errorf("%w: workout has no remote id", common.ErrorValidation)
	}
	ok, err := s.workouts.UpsertPulled(ctx, w)
	return ok, wrap(err)
}

func (s *Store) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	return wrap(s.workouts.Update(ctx, w))
}

func (s *Store) PruneWorkouts(ctx context.Context, email string, keep []int64) (int64, error) {
	n, err := s.workouts.PruneSynced(ctx, email, keep)
	return n, wrap(err)
}

func (s *Store) ListDirtyWorkouts(ctx context.Context, email string) ([]*models.Workout, error) {
	ws, err := s.workouts.ListDirty(ctx, email)
	return ws, wrap(err)
}

func (s *Store) ListPendingDeletions(ctx context.Context, email string) ([]*models.Workout, error) {
	ws, err := s.workouts.ListPendingDeletion(ctx, email)
	return ws, wrap(err)
}

func (s *Store) MarkWorkoutSynced(ctx context.Context, localID, remoteID int64) error {
	return wrap(s.workouts.MarkSynced(ctx, localID, remoteID))
}

func (s *Store) MarkPendingDeletion(ctx context.Context, localID int64) error {
	return wrap(s.workouts.MarkPendingDeletion(ctx, localID))
}

func (s *Store) DeleteWorkout(ctx context.Context, localID int64) error {
	return wrap(s.workouts.Delete(ctx, localID))
}

func (s *Store) GetWorkout(ctx context.Context, email string, localID int64) (*models.Workout, error) {
	w, err := s.workouts.Get(ctx, email, localID)
	return w, wrap(err)
}

func (s *Store) ListWorkouts(ctx context.Context, email string) ([]*models.Workout, error) {
	ws, err := s.workouts.List(ctx, email)
	return ws, wrap(err)
}

func (s *Store) ListWorkoutsForDate(ctx context.Context, email string, day time.Time) ([]*models.Workout, error) {
	ws, err := s.workouts.ListForDate(ctx, email, day)
	return ws, wrap(err)
}

func (s *Store) ListWorkoutsForRange(ctx context.Context, email string, from, to time.Time) ([]*models.Workout, error) {
	ws, err := s.workouts.ListForRange(ctx, email, from, to)
	return ws, wrap(err)
}

// RememberedCredentials returns the stored login pair, or empty strings.
func (s *Store) RememberedCredentials(ctx context.Context) (email, password string, err error) {
	v, err := s.metadata.Values(ctx, metadata.KeyRememberedEmail, metadata.KeyRememberedPassword)
	if err != nil {
		return "", "", wrap(err)
	}
	return v[metadata.KeyRememberedEmail], v[metadata.KeyRememberedPassword], nil
}

// RememberCredentials stores the pair as entered. The password is kept in
// plain text.
func (s *Store) RememberCredentials(ctx context.Context, email, password string) error {
	return wrap(s.metadata.SetValues(ctx, map[string]string{
		metadata.KeyRememberedEmail:    email,
		metadata.KeyRememberedPassword: password,
	}))
}

func (s *Store) ForgetCredentials(ctx context.Context) error {
	return wrap(s.metadata.Delete(ctx, metadata.KeyRememberedEmail, metadata.KeyRememberedPassword))
}

// LastSyncAt returns the zero time if no reconciliation ever completed.
func (s *Store) LastSyncAt(ctx context.Context) (time.Time, error) {
	v, err := s.metadata.Values(ctx, metadata.KeyLastSyncAt)
	if err != nil {
		return time.Time{}, wrap(err)
	}
	raw := v[metadata.KeyLastSyncAt]
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, wrap(fmt.Errorf("parse last sync time: %w", err))
	}
	return t, nil
}

func (s *Store) SetLastSyncAt(ctx context.Context, t time.Time) error {
	return wrap(s.metadata.SetValues(ctx, map[string]string{
		metadata.KeyLastSyncAt: t.UTC().Format(time.RFC3339),
	}))
}

// wrap tags err as a local store failure. Not-found stays matchable as
// common.ErrorNotFound.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrLocalStore, err)
}
