package profiles

import (
	"context"

	"github.com/dmitrijs2005/evorun/internal/client/models"
)

// Repository is the profile half of the local mirror store.
type Repository interface {
	// Upsert writes p keyed by p.Email and stores the given dirty flag,
	// ignoring p.Dirty.
	Upsert(ctx context.Context, p *models.Profile, dirty bool) error

	// Get returns the cached profile or (nil, nil) if there is none.
	Get(ctx context.Context, email string) (*models.Profile, error)
}
