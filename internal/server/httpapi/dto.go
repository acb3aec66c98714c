package httpapi

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/server/services"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID                  int64   `json:"id"`
	Email               string  `json:"email"`
	FullName            *string `json:"full_name"`
	Age                 *int    `json:"age"`
	WeightKg            *int    `json:"weight_kg"`
	HeightCm            *int    `json:"height_cm"`
	TrainingDaysPerWeek *int    `json:"training_days_per_week"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Email:               u.Email,
		FullName:            u.FullName,
		Age:                 u.Age,
		WeightKg:            u.WeightKg,
		HeightCm:            u.HeightCm,
		TrainingDaysPerWeek: u.TrainingDaysPerWeek,
	}
}

type profileRequest struct {
	FullName            string `json:"full_name"`
	Age                 *int   `json:"age"`
	WeightKg            *int   `json:"weight_kg"`
	HeightCm            *int   `json:"height_cm"`
	TrainingDaysPerWeek *int   `json:"training_days_per_week"`
}

func (p profileRequest) toModel() models.Profile {
	return models.Profile{
		FullName:            p.FullName,
		Age:                 p.Age,
		WeightKg:            p.WeightKg,
		HeightCm:            p.HeightCm,
		TrainingDaysPerWeek: p.TrainingDaysPerWeek,
	}
}

type workoutRequest struct {
	WorkoutType     workout.Type    `json:"workout_type"`
	WorkoutDate     time.Time       `json:"workout_date"`
	DurationMinutes *int            `json:"duration_minutes"`
	DistanceKm      *float64        `json:"distance_km"`
	Details         json.RawMessage `json:"details"`
}

func (r workoutRequest) toInput() services.WorkoutInput {
	return services.WorkoutInput{
		Type:            r.WorkoutType,
		Date:            r.WorkoutDate,
		DurationMinutes: r.DurationMinutes,
		DistanceKm:      r.DistanceKm,
		Details:         r.Details,
	}
}

type workoutResponse struct {
	ID              int64           `json:"id"`
	OwnerID         int64           `json:"owner_id"`
	ClientRef       string          `json:"client_ref,omitempty"`
	WorkoutType     workout.Type    `json:"workout_type"`
	WorkoutDate     time.Time       `json:"workout_date"`
	DurationMinutes *int            `json:"duration_minutes"`
	DistanceKm      *float64        `json:"distance_km"`
	Details         json.RawMessage `json:"details"`
}

func toWorkoutResponse(w *models.Workout) workoutResponse {
	details := w.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	return workoutResponse{
		ID:              w.ID,
		OwnerID:         w.OwnerID,
		ClientRef:       w.ClientRef,
		WorkoutType:     w.Type,
		WorkoutDate:     w.Date.UTC(),
		DurationMinutes: w.DurationMinutes,
		DistanceKm:      w.DistanceKm,
		Details:         details,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}
