package client

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RemoteProfile struct {
	ID                  int64   `json:"id"`
	Email               string  `json:"email"`
	FullName            *string `json:"full_name"`
	Age                 *int    `json:"age"`
	WeightKg            *int    `json:"weight_kg"`
	HeightCm            *int    `json:"height_cm"`
	TrainingDaysPerWeek *int    `json:"training_days_per_week"`
}

// ToModel converts the server copy into a clean cached profile.
func (p *RemoteProfile) ToModel() *models.Profile {
	m := &models.Profile{
		Email:               p.Email,
		Age:                 p.Age,
		WeightKg:            p.WeightKg,
		HeightCm:            p.HeightCm,
		TrainingDaysPerWeek: p.TrainingDaysPerWeek,
	}
	if p.FullName != nil {
		m.FullName = *p.FullName
	}
	return m
}

// ProfileFields is the body of a profile update.
type ProfileFields struct {
	FullName            string `json:"full_name"`
	Age                 *int   `json:"age"`
	WeightKg            *int   `json:"weight_kg"`
	HeightCm            *int   `json:"height_cm"`
	TrainingDaysPerWeek *int   `json:"training_days_per_week"`
}

func ProfileFieldsFrom(p *models.Profile) ProfileFields {
	return ProfileFields{
		FullName:            p.FullName,
		Age:                 p.Age,
		WeightKg:            p.WeightKg,
		HeightCm:            p.HeightCm,
		TrainingDaysPerWeek: p.TrainingDaysPerWeek,
	}
}

// WorkoutPayload is the writable part of a workout.
type WorkoutPayload struct {
	WorkoutType     workout.Type    `json:"workout_type"`
	WorkoutDate     time.Time       `json:"workout_date"`
	DurationMinutes *int            `json:"duration_minutes"`
	DistanceKm      *float64        `json:"distance_km"`
	Details         json.RawMessage `json:"details,omitempty"`
}

func PayloadFrom(w *models.Workout) WorkoutPayload {
	return WorkoutPayload{
		WorkoutType:     w.Type,
		WorkoutDate:     w.Date.UTC(),
		DurationMinutes: w.DurationMinutes,
		DistanceKm:      w.DistanceKm,
		Details:         w.Details,
	}
}

type RemoteWorkout struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	ClientRef string `json:"client_ref,omitempty"`
	WorkoutPayload
}

// ToModel converts the server copy into a clean cached row of owner.
func (w *RemoteWorkout) ToModel(owner string) *models.Workout {
	id := w.ID
	return &models.Workout{
		RemoteID:        &id,
		ClientRef:       w.ClientRef,
		OwnerEmail:      owner,
		Type:            w.WorkoutType,
		Date:            w.WorkoutDate.UTC(),
		DurationMinutes: w.DurationMinutes,
		DistanceKm:      w.DistanceKm,
		Details:         w.Details,
	}
}
