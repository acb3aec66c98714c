package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/logging"
	"github.com/dmitrijs2005/evorun/internal/workout"
	"github.com/google/uuid"
)

// WorkoutStore is the part of the local mirror used for workout CRUD.
type WorkoutStore interface {
	InsertWorkout(ctx context.Context, w *models.Workout) (int64, error)
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, email string, localID int64) (*models.Workout, error)
	ListWorkouts(ctx context.Context, email string) ([]*models.Workout, error)
	ListWorkoutsForDate(ctx context.Context, email string, day time.Time) ([]*models.Workout, error)
	ListWorkoutsForRange(ctx context.Context, email string, from, to time.Time) ([]*models.Workout, error)
	MarkPendingDeletion(ctx context.Context, localID int64) error
	DeleteWorkout(ctx context.Context, localID int64) error
}

// WorkoutInput is what the user enters for a workout.
type WorkoutInput struct {
	Type            workout.Type
	Date            time.Time
	DurationMinutes *int
	DistanceKm      *float64
	Details         json.RawMessage
}

// normalize validates the input and returns the canonical details payload.
func (in WorkoutInput) normalize() (json.RawMessage, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", common.ErrorValidation, workout.ErrUnknownType, string(in.Type))
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: workout date is required", common.ErrorValidation)
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", common.ErrorValidation)
	}
	if in.DistanceKm != nil && *in.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance must not be negative", common.ErrorValidation)
	}
	details, err := workout.NormalizeDetails(in.Type, in.Details)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return details, nil
}

// WorkoutService manages the user's workouts in the local mirror. Every
// change is written locally first; an online session then tries to push it
// right away.
type WorkoutService interface {
	Add(ctx context.Context, sess *session.Session, in WorkoutInput) (*models.Workout, error)
	Edit(ctx context.Context, sess *session.Session, localID int64, in WorkoutInput) (*models.Workout, error)
	Delete(ctx context.Context, sess *session.Session, localID int64) error
	Get(ctx context.Context, sess *session.Session, localID int64) (*models.Workout, error)
	List(ctx context.Context, sess *session.Session) ([]*models.Workout, error)
	ListForDate(ctx context.Context, sess *session.Session, day time.Time) ([]*models.Workout, error)
	ListForRange(ctx context.Context, sess *session.Session, from, to time.Time) ([]*models.Workout, error)
}

type workoutService struct {
	store  WorkoutStore
	engine Reconciler
	logger logging.Logger
}

// NewWorkoutService returns a WorkoutService. A nil engine disables the
// push after each change.
func NewWorkoutService(store WorkoutStore, engine Reconciler, logger logging.Logger) WorkoutService {
	return &workoutService{store: store, engine: engine, logger: logger}
}

func (s *workoutService) Add(ctx context.Context, sess *session.Session, in WorkoutInput) (*models.Workout, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	details, err := in.normalize()
	if err != nil {
		return nil, err
	}

	w := &models.Workout{
		ClientRef:       uuid.NewString(),
		OwnerEmail:      sess.Email,
		Type:            in.Type,
		Date:            in.Date.UTC(),
		DurationMinutes: in.DurationMinutes,
		DistanceKm:      in.DistanceKm,
		Details:         details,
		Dirty:           true,
	}
	id, err := s.store.InsertWorkout(ctx, w)
	if err != nil {
		return nil, err
	}
	w.LocalID = id

	if err := syncAfterChange(ctx, s.engine, sess, s.logger); err != nil {
		return nil, err
	}
	return s.reload(ctx, sess, w)
}

func (s *workoutService) Edit(ctx context.Context, sess *session.Session, localID int64, in WorkoutInput) (*models.Workout, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	details, err := in.normalize()
	if err != nil {
		return nil, err
	}

	w, err := s.store.GetWorkout(ctx, sess.Email, localID)
	if err != nil {
		return nil, err
	}
	w.Type = in.Type
	w.Date = in.Date.UTC()
	w.DurationMinutes = in.DurationMinutes
	w.DistanceKm = in.DistanceKm
	w.Details = details
	if err := s.store.UpdateWorkout(ctx, w); err != nil {
		return nil, err
	}
	w.Dirty = true

	if err := syncAfterChange(ctx, s.engine, sess, s.logger); err != nil {
		return nil, err
	}
	return s.reload(ctx, sess, w)
}

// Delete removes a row the server never saw and flags any other row for
// deletion by the next reconciliation.
func (s *workoutService) Delete(ctx context.Context, sess *session.Session, localID int64) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	w, err := s.store.GetWorkout(ctx, sess.Email, localID)
	if err != nil {
		return err
	}
	if !w.Pushed() {
		return s.store.DeleteWorkout(ctx, localID)
	}
	if err := s.store.MarkPendingDeletion(ctx, localID); err != nil {
		return err
	}
	return syncAfterChange(ctx, s.engine, sess, s.logger)
}

func (s *workoutService) Get(ctx context.Context, sess *session.Session, localID int64) (*models.Workout, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.store.GetWorkout(ctx, sess.Email, localID)
}

func (s *workoutService) List(ctx context.Context, sess *session.Session) ([]*models.Workout, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.store.ListWorkouts(ctx, sess.Email)
}

func (s *workoutService) ListForDate(ctx context.Context, sess *session.Session, day time.Time) ([]*models.Workout, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.store.ListWorkoutsForDate(ctx, sess.Email, day)
}

func (s *workoutService) ListForRange(ctx context.Context, sess *session.Session, from, to time.Time) ([]*models.Workout, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: range start must be before its end", common.ErrorValidation)
	}
	return s.store.ListWorkoutsForRange(ctx, sess.Email, from, to)
}

// reload returns the stored row so sync flags are current. A row removed by
// the sync in between (deleted remotely) is returned as it was written.
func (s *workoutService) reload(ctx context.Context, sess *session.Session, w *models.Workout) (*models.Workout, error) {
	fresh, err := s.store.GetWorkout(ctx, sess.Email, w.LocalID)
	if err != nil {
		if isNotFound(err) {
			return w, nil
		}
		return nil, err
	}
	return fresh, nil
}
