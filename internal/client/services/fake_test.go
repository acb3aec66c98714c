package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/evorun/internal/client/client"
)

// fakeClient is a small in-memory backend. down makes every call
// unreachable; password is the only accepted password.
type fakeClient struct {
	mu sync.Mutex

	down     bool
	password string
	profile  client.RemoteProfile
	workouts map[int64]client.RemoteWorkout
	nextID   int64

	loginCalls    int
	registered    []string
	registerError error
}

func newFakeClient(email, password string) *fakeClient {
	return &fakeClient{
		password: password,
		profile:  client.RemoteProfile{ID: 1, Email: email},
		workouts: map[int64]client.RemoteWorkout{},
		nextID:   100,
	}
}

func (f *fakeClient) check() error {
	if f.down {
		return fmt.Errorf("%w: connection refused", client.ErrUnavailable)
	}
	return nil
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if err := f.check(); err != nil {
		return "", err
	}
	if email != f.profile.Email || password != f.password {
		return "", fmt.Errorf("%w: Incorrect email or password", client.ErrUnauthorized)
	}
	return "tok-" + email, nil
}

func (f *fakeClient) Register(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	if f.registerError != nil {
		return f.registerError
	}
	f.registered = append(f.registered, email)
	return nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check()
}

func (f *fakeClient) FetchProfile(ctx context.Context, token string) (*client.RemoteProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	p := f.profile
	return &p, nil
}

func (f *fakeClient) PushProfile(ctx context.Context, token string, fields client.ProfileFields) (*client.RemoteProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	name := fields.FullName
	f.profile.FullName = &name
	f.profile.Age = fields.Age
	f.profile.WeightKg = fields.WeightKg
	f.profile.HeightCm = fields.HeightCm
	f.profile.TrainingDaysPerWeek = fields.TrainingDaysPerWeek
	p := f.profile
	return &p, nil
}

func (f *fakeClient) FetchWorkouts(ctx context.Context, token string) ([]client.RemoteWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	out := make([]client.RemoteWorkout, 0, len(f.workouts))
	for _, w := range f.workouts {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeClient) CreateWorkout(ctx context.Context, token string, payload client.WorkoutPayload, key string) (*client.RemoteWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	w := client.RemoteWorkout{ID: f.nextID, ClientRef: key, WorkoutPayload: payload}
	f.nextID++
	f.workouts[w.ID] = w
	return &w, nil
}

func (f *fakeClient) UpdateWorkout(ctx context.Context, token string, id int64, payload client.WorkoutPayload) (*client.RemoteWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	w, ok := f.workouts[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	w.WorkoutPayload = payload
	f.workouts[id] = w
	return &w, nil
}

func (f *fakeClient) DeleteWorkout(ctx context.Context, token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	if _, ok := f.workouts[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.workouts, id)
	return nil
}

func (f *fakeClient) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

var _ client.Client = (*fakeClient)(nil)
