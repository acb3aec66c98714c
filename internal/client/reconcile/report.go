package reconcile

import (
	"fmt"
	"time"
)

// Report summarizes one reconciliation run.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	ProfilePushed bool
	ProfilePulled bool

	Created  int
	Updated  int
	Vanished int // updated rows the server no longer had

	DeletedRemote int
	DeletedLocal  int // never pushed, removed without asking the server

	Pulled int
	Pruned int

	// Failed counts remote calls that got an unexpected answer. The rows
	// involved stay dirty.
	Failed int

	// Deferred is set when the server became unreachable during the run.
	Deferred bool
}

// Pushed is the number of rows the server accepted in this run.
func (r *Report) Pushed() int {
	return r.Created + r.Updated + r.DeletedRemote
}

func (r *Report) String() string {
	s := fmt.Sprintf("created=%d updated=%d deleted=%d pulled=%d failed=%d",
		r.Created, r.Updated, r.DeletedRemote+r.DeletedLocal+r.Vanished, r.Pulled, r.Failed)
	if r.Deferred {
		s += " (deferred: server unreachable)"
	}
	return s
}
