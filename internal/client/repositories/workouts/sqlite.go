package workouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/dbx"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

const selectColumns = `local_id, remote_id, client_ref, owner_email, workout_type, workout_date,
	duration_minutes, distance_km, details, synced, to_be_deleted`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, w *models.Workout) (int64, error) {
	query := `INSERT INTO workouts (remote_id, client_ref, owner_email, workout_type, workout_date,
			duration_minutes, distance_km, details, synced, to_be_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		w.RemoteID, nullString(w.ClientRef), w.OwnerEmail, string(w.Type), w.Date.Unix(),
		w.DurationMinutes, w.DistanceKm, details(w), !w.Dirty, w.PendingDeletion)
	if err != nil {
		return 0, fmt.Errorf("failed to insert workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted workout id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, w *models.Workout) error {
	query := `UPDATE workouts SET workout_type = ?, workout_date = ?, duration_minutes = ?,
			distance_km = ?, details = ?, synced = 0
		WHERE local_id = ? AND to_be_deleted = 0`
	res, err := r.db.ExecContext(ctx, query,
		string(w.Type), w.Date.Unix(), w.DurationMinutes, w.DistanceKm, details(w), w.LocalID)
	if err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}
	return notFound(dbx.RequireOneRow(res))
}

func (r *SQLiteRepository) UpsertPulled(ctx context.Context, w *models.Workout) (bool, error) {
	if w.RemoteID == nil {
		return false, errors.New("pulled workout without remote id")
	}

	if w.ClientRef != "" {
		_, err := r.db.ExecContext(ctx,
			`UPDATE workouts SET remote_id = ? WHERE client_ref = ? AND remote_id IS NULL`,
			*w.RemoteID, w.ClientRef)
		if err != nil {
			return false, fmt.Errorf("failed to adopt remote id: %w", err)
		}
	}

	query := `INSERT INTO workouts (remote_id, client_ref, owner_email, workout_type, workout_date,
			duration_minutes, distance_km, details, synced, to_be_deleted)
		VALUES (?, NULL, ?, ?, ?, ?, ?, ?, 1, 0)
		ON CONFLICT(remote_id) DO UPDATE SET
			workout_type = excluded.workout_type,
			workout_date = excluded.workout_date,
			duration_minutes = excluded.duration_minutes,
			distance_km = excluded.distance_km,
			details = excluded.details,
			synced = 1
		WHERE workouts.synced = 1 AND workouts.to_be_deleted = 0`
	res, err := r.db.ExecContext(ctx, query,
		*w.RemoteID, w.OwnerEmail, string(w.Type), w.Date.Unix(),
		w.DurationMinutes, w.DistanceKm, details(w))
	if err != nil {
		return false, fmt.Errorf("failed to upsert pulled workout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) PruneSynced(ctx context.Context, email string, keep []int64) (int64, error) {
	query := `DELETE FROM workouts
		WHERE owner_email = ? AND remote_id IS NOT NULL AND synced = 1 AND to_be_deleted = 0`
	args := []any{email}
	if len(keep) > 0 {
		query += ` AND remote_id NOT IN (` + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune workouts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, email string, localID int64) (*models.Workout, error) {
	query := `SELECT ` + selectColumns + ` FROM workouts
		WHERE owner_email = ? AND local_id = ? AND to_be_deleted = 0`
	w, err := scanWorkout(r.db.QueryRowContext(ctx, query, email, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) List(ctx context.Context, email string) ([]*models.Workout, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM workouts
		WHERE owner_email = ? AND to_be_deleted = 0
		ORDER BY workout_date DESC, local_id DESC`, email)
}

// ListForRange returns visible rows dated within [from, to).
func (r *SQLiteRepository) ListForRange(ctx context.Context, email string, from, to time.Time) ([]*models.Workout, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM workouts
		WHERE owner_email = ? AND to_be_deleted = 0 AND workout_date >= ? AND workout_date < ?
		ORDER BY workout_date, local_id`, email, from.Unix(), to.Unix())
}

// ListForDate returns the rows of the calendar day containing day, in day's
// location.
func (r *SQLiteRepository) ListForDate(ctx context.Context, email string, day time.Time) ([]*models.Workout, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.ListForRange(ctx, email, start, start.AddDate(0, 0, 1))
}

func (r *SQLiteRepository) ListDirty(ctx context.Context, email string) ([]*models.Workout, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM workouts
		WHERE owner_email = ? AND synced = 0 AND to_be_deleted = 0
		ORDER BY local_id`, email)
}

func (r *SQLiteRepository) ListPendingDeletion(ctx context.Context, email string) ([]*models.Workout, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM workouts
		WHERE owner_email = ? AND to_be_deleted = 1
		ORDER BY local_id`, email)
}

// MarkSynced records the server id of a pushed row and clears its dirty flag.
// An already assigned remote id cannot be replaced.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID, remoteID int64) error {
	query := `UPDATE workouts SET remote_id = ?, synced = 1
		WHERE local_id = ? AND (remote_id IS NULL OR remote_id = ?)`
	res, err := r.db.ExecContext(ctx, query, remoteID, localID, remoteID)
	if err != nil {
		return fmt.Errorf("failed to mark workout synced: %w", err)
	}
	if err := dbx.RequireOneRow(res); err != nil {
		return fmt.Errorf("failed to mark workout %d synced as %d: %w", localID, remoteID, notFound(err))
	}
	return nil
}

func (r *SQLiteRepository) MarkPendingDeletion(ctx context.Context, localID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workouts SET to_be_deleted = 1 WHERE local_id = ? AND to_be_deleted = 0`, localID)
	if err != nil {
		return fmt.Errorf("failed to mark workout for deletion: %w", err)
	}
	return notFound(dbx.RequireOneRow(res))
}

func (r *SQLiteRepository) Delete(ctx context.Context, localID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Workout, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select workouts: %w", err)
	}
	defer rows.Close()

	var result []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workouts: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkout(s scanner) (*models.Workout, error) {
	var (
		w         models.Workout
		remoteID  sql.NullInt64
		clientRef sql.NullString
		typ       string
		date      int64
		duration  sql.NullInt64
		distance  sql.NullFloat64
		raw       string
		synced    bool
	)
	err := s.Scan(&w.LocalID, &remoteID, &clientRef, &w.OwnerEmail, &typ, &date,
		&duration, &distance, &raw, &synced, &w.PendingDeletion)
	if err != nil {
		return nil, err
	}

	if remoteID.Valid {
		id := remoteID.Int64
		w.RemoteID = &id
	}
	w.ClientRef = clientRef.String
	w.Type = workout.Type(typ)
	w.Date = time.Unix(date, 0).UTC()
	if duration.Valid {
		d := int(duration.Int64)
		w.DurationMinutes = &d
	}
	if distance.Valid {
		d := distance.Float64
		w.DistanceKm = &d
	}
	w.Details = []byte(raw)
	w.Dirty = !synced
	return &w, nil
}

func details(w *models.Workout) string {
	if len(w.Details) == 0 {
		return "{}"
	}
	return string(w.Details)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func notFound(err error) error {
	if errors.Is(err, dbx.ErrNoRowsAffected) {
		return common.ErrorNotFound
	}
	return err
}
