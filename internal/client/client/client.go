package client

import (
	"context"
)

// Client is the remote API as seen by the rest of the client.
type Client interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) error
	Ping(ctx context.Context) error

	FetchProfile(ctx context.Context, token string) (*RemoteProfile, error)
	PushProfile(ctx context.Context, token string, fields ProfileFields) (*RemoteProfile, error)

	// FetchWorkouts returns every workout of the token's owner.
	FetchWorkouts(ctx context.Context, token string) ([]RemoteWorkout, error)
	// CreateWorkout creates a workout. Repeating the call with the same
	// idempotencyKey returns the workout created the first time.
	CreateWorkout(ctx context.Context, token string, payload WorkoutPayload, idempotencyKey string) (*RemoteWorkout, error)
	UpdateWorkout(ctx context.Context, token string, remoteID int64, payload WorkoutPayload) (*RemoteWorkout, error)
	DeleteWorkout(ctx context.Context, token string, remoteID int64) error
}
