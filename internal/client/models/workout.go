package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/evorun/internal/workout"
)

// Workout is a cached workout record.
//
// LocalID is assigned by the store and never reused. RemoteID stays nil until
// the first successful push and never changes afterwards. ClientRef is a
// random identifier generated at local creation and sent as the idempotency
// key of the remote create call.
type Workout struct {
	LocalID         int64
	RemoteID        *int64
	ClientRef       string
	OwnerEmail      string
	Type            workout.Type
	Date            time.Time
	DurationMinutes *int
	DistanceKm      *float64
	Details         json.RawMessage

	Dirty           bool
	PendingDeletion bool
}

// Synced reports whether the row is fully synchronized.
func (w *Workout) Synced() bool {
	return !w.Dirty && !w.PendingDeletion
}

// Pushed reports whether the server already knows this row.
func (w *Workout) Pushed() bool {
	return w.RemoteID != nil
}

// State names the row's position in the sync state machine.
func (w *Workout) State() SyncState {
	switch {
	case w.PendingDeletion:
		return StatePendingDeletion
	case w.Dirty && w.RemoteID == nil:
		return StateNew
	case w.Dirty:
		return StateDirty
	default:
		return StateSynced
	}
}

// SyncState is the per-row synchronization state shown to the user.
type SyncState string

const (
	StateNew             SyncState = "new"
	StateDirty           SyncState = "dirty"
	StateSynced          SyncState = "synced"
	StatePendingDeletion SyncState = "pending_deletion"
)
