package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyRememberedEmail    = "remembered_email"
	KeyRememberedPassword = "remembered_password" // stored unencrypted
	KeyLastSyncAt         = "last_sync_at"
)

type Repository interface {
	// Values returns the stored values of keys. Missing keys are left out.
	Values(ctx context.Context, keys ...string) (map[string]string, error)
	// SetValues upserts every pair of values.
	SetValues(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
