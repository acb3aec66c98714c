package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/dbx"
	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
	maxClientRefLen  = 128
)

// WorkoutInput is the writable part of a workout as received from a client.
type WorkoutInput struct {
	Type            workout.Type
	Date            time.Time
	DurationMinutes *int
	DistanceKm      *float64
	Details         json.RawMessage
}

func (in WorkoutInput) toModel() (*models.Workout, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", common.ErrorValidation, workout.ErrUnknownType, string(in.Type))
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: workout_date is required", common.ErrorValidation)
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration_minutes must not be negative", common.ErrorValidation)
	}
	if in.DistanceKm != nil && *in.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance_km must not be negative", common.ErrorValidation)
	}
	details, err := workout.NormalizeDetails(in.Type, in.Details)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return &models.Workout{
		Type:            in.Type,
		Date:            in.Date.UTC(),
		DurationMinutes: in.DurationMinutes,
		DistanceKm:      in.DistanceKm,
		Details:         details,
	}, nil
}

type WorkoutService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewWorkoutService(db *sql.DB, m repomanager.RepositoryManager) *WorkoutService {
	return &WorkoutService{db: db, repomanager: m}
}

// Create stores a workout of ownerID. A repeated idempotency key returns the
// workout created the first time and created is false.
func (s *WorkoutService) Create(ctx context.Context, ownerID int64, in WorkoutInput, idempotencyKey string) (*models.Workout, bool, error) {
	w, err := in.toModel()
	if err != nil {
		return nil, false, err
	}
	key := strings.TrimSpace(idempotencyKey)
	if len(key) > maxClientRefLen {
		return nil, false, fmt.Errorf("%w: idempotency key is too long", common.ErrorValidation)
	}
	w.OwnerID = ownerID
	w.ClientRef = key

	var (
		result  *models.Workout
		created bool
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, created, err = s.repomanager.Workouts(tx).Create(ctx, w)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("error creating workout: %w", err)
	}
	return result, created, nil
}

// ClampPage bounds skip and limit to what List accepts.
func ClampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return skip, limit
}

func (s *WorkoutService) List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Workout, error) {
	skip, limit = ClampPage(skip, limit)
	return s.repomanager.Workouts(s.db).List(ctx, ownerID, skip, limit)
}

func (s *WorkoutService) Get(ctx context.Context, ownerID, id int64) (*models.Workout, error) {
	return s.repomanager.Workouts(s.db).Get(ctx, ownerID, id)
}

// Update replaces the writable fields of workout id. Workouts of other
// owners are reported as common.ErrorNotFound.
func (s *WorkoutService) Update(ctx context.Context, ownerID, id int64, in WorkoutInput) (*models.Workout, error) {
	w, err := in.toModel()
	if err != nil {
		return nil, err
	}
	w.ID = id
	w.OwnerID = ownerID
	return s.repomanager.Workouts(s.db).Update(ctx, w)
}

func (s *WorkoutService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repomanager.Workouts(s.db).Delete(ctx, ownerID, id)
}
