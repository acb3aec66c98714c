// Package models defines the server-side records stored in Postgres.
package models

import "time"

// User is an account together with its profile. Profile fields stay nil
// until the user completes onboarding.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time

	FullName            *string
	Age                 *int
	WeightKg            *int
	HeightCm            *int
	TrainingDaysPerWeek *int
}

// Profile is the writable part of a user.
type Profile struct {
	FullName            string
	Age                 *int
	WeightKg            *int
	HeightCm            *int
	TrainingDaysPerWeek *int
}
