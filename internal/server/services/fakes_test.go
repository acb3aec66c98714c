package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/dbx"
	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/server/repositories/users"
	"github.com/dmitrijs2005/evorun/internal/server/repositories/workouts"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

type fakeManager struct {
	users    *fakeUsers
	workouts *fakeWorkouts
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:    &fakeUsers{byID: map[int64]*models.User{}},
		workouts: &fakeWorkouts{byID: map[int64]*models.Workout{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Workouts(dbx.DBTX) workouts.Repository        { return m.workouts }

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64
	err    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	c := *u
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
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
	name := p.FullName
	u.FullName = &name
	u.Age, u.WeightKg, u.HeightCm, u.TrainingDaysPerWeek = p.Age, p.WeightKg, p.HeightCm, p.TrainingDaysPerWeek
	c := *u
	return &c, nil
}

type fakeWorkouts struct {
	mu     sync.Mutex
	byID   map[int64]*models.Workout
	nextID int64
}

func (f *fakeWorkouts) Create(_ context.Context, w *models.Workout) (*models.Workout, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ClientRef != "" {
		for _, existing := range f.byID {
			if existing.OwnerID == w.OwnerID && existing.ClientRef == w.ClientRef {
				c := *existing
				return &c, false, nil
			}
		}
	}
	f.nextID++
	c := *w
	c.ID = f.nextID
	f.byID[c.ID] = &c
	out := c
	return &out, true, nil
}

func (f *fakeWorkouts) Get(_ context.Context, ownerID, id int64) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[id]
	if !ok || w.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	c := *w
	return &c, nil
}

func (f *fakeWorkouts) List(_ context.Context, ownerID int64, skip, limit int) ([]*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Workout{}
	for _, w := range f.byID {
		if w.OwnerID == ownerID {
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

func (f *fakeWorkouts) Update(_ context.Context, w *models.Workout) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[w.ID]
	if !ok || existing.OwnerID != w.OwnerID {
		return nil, common.ErrorNotFound
	}
	c := *w
	c.ClientRef = existing.ClientRef
	f.byID[w.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeWorkouts) Delete(_ context.Context, ownerID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[id]
	if !ok || w.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}
