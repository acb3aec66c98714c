package workouts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/models"
)

// Repository describes the workout half of the local mirror store.
// Lookups that find nothing return common.ErrorNotFound.
type Repository interface {
	// Insert stores a new row and returns its local id. The flags of w are
	// stored as given.
	Insert(ctx context.Context, w *models.Workout) (int64, error)

	// Update rewrites the workout fields of an existing, visible row and
	// marks it dirty.
	Update(ctx context.Context, w *models.Workout) error


	// UpsertPulled inserts or refreshes a server copy keyed by RemoteID and
	// marks it synced. Rows with pending local changes are left alone.
	// A local row whose create reached the server without the answer
	// reaching us is matched by ClientRef and adopts the remote id.
	// It reports whether a row was written.
	UpsertPulled(ctx context.Context, w *models.Workout) (bool, error)

	// PruneSynced removes synced rows of email whose remote id is not in keep.
	PruneSynced(ctx context.Context, email string, keep []int64) (int64, error)

	Get(ctx context.Context, email string, localID int64) (*models.Workout, error)
	List(ctx context.Context, email string) ([]*models.Workout, error)
	ListForRange(ctx context.Context, email string, from, to time.Time) ([]*models.Workout, error)
	ListForDate(ctx context.Context, email string, day time.Time) ([]*models.Workout, error)

	// ListDirty returns rows with unpushed edits that are not flagged for
	// deletion, oldest first.
	ListDirty(ctx context.Context, email string) ([]*models.Workout, error)
	ListPendingDeletion(ctx context.Context, email string) ([]*models.Workout, error)

	MarkSynced(ctx context.Context, localID, remoteID int64) error
	MarkPendingDeletion(ctx context.Context, localID int64) error

	// Delete removes the row physically. Deleting a missing row is not an
	// error.
	Delete(ctx context.Context, localID int64) error
}
