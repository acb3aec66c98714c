package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Profile, dirty bool) error {
	if p == nil || p.Email == "" {
		return errors.New("profile without email")
	}
	query := `INSERT INTO profiles (email, full_name, age, weight_kg, height_cm, training_days_per_week, dirty)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			full_name = excluded.full_name,
			age = excluded.age,
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			training_days_per_week = excluded.training_days_per_week,
			dirty = excluded.dirty`
	_, err := r.db.ExecContext(ctx, query,
		p.Email, p.FullName, p.Age, p.WeightKg, p.HeightCm, p.TrainingDaysPerWeek, dirty)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT email, full_name, age, weight_kg, height_cm, training_days_per_week, dirty
		FROM profiles WHERE email = ?`

	var (
		p                        models.Profile
		age, weight, height, tdw sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&p.Email, &p.FullName, &age, &weight, &height, &tdw, &p.Dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Age = intPtr(age)
	p.WeightKg = intPtr(weight)
	p.HeightCm = intPtr(height)
	p.TrainingDaysPerWeek = intPtr(tdw)
	return &p, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
