package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/evorun/internal/workout"
)

// Workout is a stored workout record. ClientRef is the idempotency key the
// creating client sent, empty when none was given.
type Workout struct {
	ID              int64
	OwnerID         int64
	ClientRef       string
	Type            workout.Type
	Date            time.Time
	DurationMinutes *int
	DistanceKm      *float64
	Details         json.RawMessage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
