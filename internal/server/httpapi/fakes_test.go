package httpapi

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/server/services"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

// fakeUsers issues "tok-<id>" tokens and keeps plaintext passwords.
type fakeUsers struct {
	mu        sync.Mutex
	byID      map[int64]*models.User
	passwords map[string]string
	nextID    int64
	failWith  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*models.User{}, passwords: map[string]string{}}
}

func (f *fakeUsers) Register(_ context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if _, ok := f.passwords[email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u := &models.User{ID: f.nextID, Email: email}
	f.byID[u.ID] = u
	f.passwords[email] = password
	c := *u
	return &c, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	if p, ok := f.passwords[email]; !ok || p != password {
		return "", common.ErrorUnauthorized
	}
	for _, u := range f.byID {
		if u.Email == email {
			return "tok-" + strconv.FormatInt(u.ID, 10), nil
		}
	}
	return "", common.ErrorUnauthorized
}

func (f *fakeUsers) Authenticate(token string) (int64, error) {
	s, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return 0, common.ErrInvalidToken
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

func (f *fakeUsers) GetProfile(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, p models.Profile) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.FullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", common.ErrorValidation)
	}
	name := p.FullName
	u.FullName = &name
	u.Age, u.WeightKg, u.HeightCm, u.TrainingDaysPerWeek = p.Age, p.WeightKg, p.HeightCm, p.TrainingDaysPerWeek
	c := *u
	return &c, nil
}

type fakeWorkouts struct {
	mu       sync.Mutex
	byID     map[int64]*models.Workout
	nextID   int64
	failWith error
	lastSkip int
	lastLim  int
}

func newFakeWorkouts() *fakeWorkouts {
	return &fakeWorkouts{byID: map[int64]*models.Workout{}}
}

func toModel(in services.WorkoutInput) (*models.Workout, error) {
	details, err := workout.NormalizeDetails(in.Type, in.Details)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return &models.Workout{
		Type: in.Type, Date: in.Date.UTC(),
		DurationMinutes: in.DurationMinutes, DistanceKm: in.DistanceKm, Details: details,
	}, nil
}

func (f *fakeWorkouts) Create(_ context.Context, owner int64, in services.WorkoutInput, key string) (*models.Workout, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, false, f.failWith
	}
	w, err := toModel(in)
	if err != nil {
		return nil, false, err
	}
	if key != "" {
		for _, existing := range f.byID {
			if existing.OwnerID == owner && existing.ClientRef == key {
				c := *existing
				return &c, false, nil
			}
		}
	}
	f.nextID++
	w.ID, w.OwnerID, w.ClientRef = f.nextID, owner, key
	f.byID[w.ID] = w
	c := *w
	return &c, true, nil
}

func (f *fakeWorkouts) List(_ context.Context, owner int64, skip, limit int) ([]*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSkip, f.lastLim = skip, limit
	skip, limit = services.ClampPage(skip, limit)
	out := []*models.Workout{}
	for _, w := range f.byID {
		if w.OwnerID == owner {
			c := *w
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if skip >= len(out) {
		return []*models.Workout{}, nil
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWorkouts) Update(_ context.Context, owner, id int64, in services.WorkoutInput) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[id]
	if !ok || existing.OwnerID != owner {
		return nil, common.ErrorNotFound
	}
	w, err := toModel(in)
	if err != nil {
		return nil, err
	}
	w.ID, w.OwnerID, w.ClientRef = id, owner, existing.ClientRef
	f.byID[id] = w
	c := *w
	return &c, nil
}

func (f *fakeWorkouts) Delete(_ context.Context, owner, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[id]
	if !ok || existing.OwnerID != owner {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}
