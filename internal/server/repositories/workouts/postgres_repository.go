package workouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/dbx"
	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

const workoutColumns = `id, owner_id, client_ref, workout_type, workout_date,
		duration_minutes, distance_km, details, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, w *models.Workout) (*models.Workout, bool, error) {
	query :=
		`INSERT INTO workouts (owner_id, client_ref, workout_type, workout_date,
			duration_minutes, distance_km, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (owner_id, client_ref) DO NOTHING
		 RETURNING ` + workoutColumns

	created, err := scanWorkout(r.db.QueryRowContext(ctx, query,
		w.OwnerID, nullString(w.ClientRef), string(w.Type), w.Date.UTC(),
		w.DurationMinutes, w.DistanceKm, []byte(w.Details)))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, common.ErrorNotFound) || w.ClientRef == "" {
		return nil, false, err
	}

	existing, err := scanWorkout(r.db.QueryRowContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE owner_id = $1 AND client_ref = $2`,
		w.OwnerID, w.ClientRef))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id int64) (*models.Workout, error) {
	return scanWorkout(r.db.QueryRowContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE owner_id = $1 AND id = $2`,
		ownerID, id))
}

func (r *PostgresRepository) List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Workout, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE owner_id = $1
		 ORDER BY id
		 OFFSET $2 LIMIT $3`,
		ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	query :=
		`UPDATE workouts
		 SET workout_type = $3, workout_date = $4, duration_minutes = $5,
		     distance_km = $6, details = $7, updated_at = now()
		 WHERE owner_id = $1 AND id = $2
		 RETURNING ` + workoutColumns

	return scanWorkout(r.db.QueryRowContext(ctx, query,
		w.OwnerID, w.ID, string(w.Type), w.Date.UTC(),
		w.DurationMinutes, w.DistanceKm, []byte(w.Details)))
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.RequireOneRow(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrorNotFound
		}
		return err
	}
	return nil
}

func scanWorkout(row rowScanner) (*models.Workout, error) {
	w := &models.Workout{}
	var (
		clientRef sql.NullString
		wType     string
		duration  sql.NullInt64
		distance  sql.NullFloat64
		details   []byte
	)
	err := row.Scan(&w.ID, &w.OwnerID, &clientRef, &wType, &w.Date,
		&duration, &distance, &details, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	w.ClientRef = clientRef.String
	w.Type = workout.Type(wType)
	w.Date = w.Date.UTC()
	if duration.Valid {
		d := int(duration.Int64)
		w.DurationMinutes = &d
	}
	if distance.Valid {
		km := distance.Float64
		w.DistanceKm = &km
	}
	w.Details = details
	return w, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
