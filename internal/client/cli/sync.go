package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/reconcile"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/metrics"
)

// Sync runs a reconciliation on demand. An offline session cannot sync; the
// user has to log in again once the server is reachable.
func (a *App) Sync(ctx context.Context) error {
	if !a.sess.CanSync() {
		fmt.Fprintln(a.out, "Offline session: changes stay local until you log in again with the server reachable")
		return nil
	}

	report, err := a.engine.Reconcile(ctx, a.sess)
	if errors.Is(err, reconcile.ErrSyncInProgress) {
		fmt.Fprintln(a.out, "A sync is already running")
		return nil
	}
	if err != nil {
		return err
	}

	if report.Deferred {
		a.setMode(session.ModeOffline)
	} else {
		a.setMode(session.ModeOnline)
	}
	fmt.Fprintf(a.out, "Sync finished: %s\n", report)
	return nil
}

// Status prints the session mode, server reachability and pending changes.
func (a *App) Status(ctx context.Context) error {
	last, err := a.status.LastSyncAt(ctx)
	if err != nil {
		return err
	}
	dirty, err := a.status.ListDirtyWorkouts(ctx, a.sess.Email)
	if err != nil {
		return err
	}
	pending, err := a.status.ListPendingDeletions(ctx, a.sess.Email)
	if err != nil {
		return err
	}

	lastSync := "never"
	if !last.IsZero() {
		lastSync = last.In(time.Local).Format(time.DateTime)
	}
	server := string(a.currentMode())
	if server == "" {
		server = "unknown"
	}

	fmt.Fprintf(a.out, "User:             %s\n", a.sess.Email)
	fmt.Fprintf(a.out, "Session:          %s\n", a.sess.Mode)
	fmt.Fprintf(a.out, "Server:           %s\n", server)
	fmt.Fprintf(a.out, "Last sync:        %s\n", lastSync)
	fmt.Fprintf(a.out, "Unsynced changes: %d\n", len(dirty))
	fmt.Fprintf(a.out, "Pending deletes:  %d\n", len(pending))

	runs, err := metrics.SyncRunTotals(a.gatherer)
	if err != nil {
		a.logger.Warn(ctx, "gathering metrics failed", "error", err)
		return nil
	}
	calls, err := metrics.ClientRequestTotals(a.gatherer)
	if err != nil {
		a.logger.Warn(ctx, "gathering metrics failed", "error", err)
		return nil
	}
	fmt.Fprintf(a.out, "Syncs this run:   %s\n", formatTotals(runs))
	fmt.Fprintf(a.out, "Remote calls:     %s\n", formatTotals(calls))
	return nil
}

// formatTotals renders {"ok":3,"unreachable":1} as "ok=3 unreachable=1".
func formatTotals(m map[string]float64) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.0f", k, m[k]))
	}
	return strings.Join(parts, " ")
}
