package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/evorun/internal/client/client"
)

// fakeServer is an in-memory stand-in for the backend. fail, when set, is
// consulted before each call; an error it returns is what the call returns.
// failAfter lets the call take effect and then loses the answer.
type fakeServer struct {
	mu sync.Mutex

	nextID   int64
	workouts map[int64]client.RemoteWorkout
	byKey    map[string]int64
	profile  client.RemoteProfile

	fail      func(op string) error
	failAfter func(op string) error
	calls     map[string]int
}

func newFakeServer(email string) *fakeServer {
	return &fakeServer{
		nextID:   1,
		workouts: map[int64]client.RemoteWorkout{},
		byKey:    map[string]int64{},
		profile:  client.RemoteProfile{ID: 1, Email: email},
		calls:    map[string]int{},
	}
}

func (f *fakeServer) enter(op string) error {
	f.calls[op]++
	if f.fail != nil {
		return f.fail(op)
	}
	return nil
}

func (f *fakeServer) leave(op string) error {
	if f.failAfter != nil {
		return f.failAfter(op)
	}
	return nil
}

func (f *fakeServer) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("login"); err != nil {
		return "", err
	}
	return "tok", nil
}

func (f *fakeServer) Register(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("register")
}

func (f *fakeServer) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("ping")
}

func (f *fakeServer) FetchProfile(ctx context.Context, token string) (*client.RemoteProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("fetch_profile"); err != nil {
		return nil, err
	}
	p := f.profile
	return &p, nil
}

func (f *fakeServer) PushProfile(ctx context.Context, token string, fields client.ProfileFields) (*client.RemoteProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("push_profile"); err != nil {
		return nil, err
	}
	name := fields.FullName
	f.profile.FullName = &name
	f.profile.Age = fields.Age
	f.profile.WeightKg = fields.WeightKg
	f.profile.HeightCm = fields.HeightCm
	f.profile.TrainingDaysPerWeek = fields.TrainingDaysPerWeek
	if err := f.leave("push_profile"); err != nil {
		return nil, err
	}
	p := f.profile
	return &p, nil
}

func (f *fakeServer) FetchWorkouts(ctx context.Context, token string) ([]client.RemoteWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("fetch_workouts"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(f.workouts))
	for id := range f.workouts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]client.RemoteWorkout, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.workouts[id])
	}
	return out, nil
}

func (f *fakeServer) CreateWorkout(ctx context.Context, token string, payload client.WorkoutPayload, key string) (*client.RemoteWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("create_workout"); err != nil {
		return nil, err
	}
	if id, ok := f.byKey[key]; ok && key != "" {
		w := f.workouts[id]
		return &w, nil
	}

	w := client.RemoteWorkout{ID: f.nextID, OwnerID: 1, ClientRef: key, WorkoutPayload: payload}
	f.nextID++
	f.workouts[w.ID] = w
	if key != "" {
		f.byKey[key] = w.ID
	}
	if err := f.leave("create_workout"); err != nil {
		return nil, err
	}
	return &w, nil
}

func (f *fakeServer) UpdateWorkout(ctx context.Context, token string, id int64, payload client.WorkoutPayload) (*client.RemoteWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("update_workout"); err != nil {
		return nil, err
	}
	w, ok := f.workouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: workout %d", client.ErrNotFound, id)
	}
	w.WorkoutPayload = payload
	f.workouts[id] = w
	return &w, nil
}

func (f *fakeServer) DeleteWorkout(ctx context.Context, token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete_workout"); err != nil {
		return err
	}
	if _, ok := f.workouts[id]; !ok {
		return fmt.Errorf("%w: workout %d", client.ErrNotFound, id)
	}
	delete(f.workouts, id)
	return nil
}

func (f *fakeServer) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeServer) pushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls["create_workout"] + f.calls["update_workout"] + f.calls["delete_workout"] + f.calls["push_profile"]
}

func (f *fakeServer) remoteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.workouts)
}

var _ client.Client = (*fakeServer)(nil)
