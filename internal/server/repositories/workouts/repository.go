package workouts

import (
	"context"

	"github.com/dmitrijs2005/evorun/internal/server/models"
)

type Repository interface {
	// Create inserts w. With a ClientRef already used by the same owner the
	// existing row is returned instead and created is false.
	Create(ctx context.Context, w *models.Workout) (result *models.Workout, created bool, err error)
	Get(ctx context.Context, ownerID, id int64) (*models.Workout, error)
	List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Workout, error)
	Update(ctx context.Context, w *models.Workout) (*models.Workout, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
