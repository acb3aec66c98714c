package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/evorun/internal/client/reconcile"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/logging"
)

// syncAfterChange runs an opportunistic reconciliation after a local edit.
// The edit is already safe in the mirror, so remote trouble is only logged;
// a broken local store is returned.
func syncAfterChange(ctx context.Context, engine Reconciler, sess *session.Session, logger logging.Logger) error {
	if engine == nil || !sess.CanSync() {
		return nil
	}
	report, err := engine.Reconcile(ctx, sess)
	switch {
	case err == nil:
		logger.Debug(ctx, "sync after change", "report", report.String())
		return nil
	case errors.Is(err, reconcile.ErrSyncInProgress):
		return nil
	case isLocalStoreError(err):
		return err
	default:
		logger.Warn(ctx, "sync after change failed", "error", err)
		return nil
	}
}
