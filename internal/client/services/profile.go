package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/logging"
)

// ProfileStore is the part of the local mirror used for the profile.
type ProfileStore interface {
	GetProfile(ctx context.Context, email string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile, dirty bool) error
}

// ProfileInput holds the onboarding fields. All of them are required.
type ProfileInput struct {
	FullName            string
	Age                 int
	WeightKg            int
	HeightCm            int
	TrainingDaysPerWeek int
}

func (in ProfileInput) validate() error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return validationError("full name is required")
	case in.Age <= 0 || in.Age > 130:
		return validationError("age %d is out of range", in.Age)
	case in.WeightKg <= 0 || in.WeightKg > 500:
		return validationError("weight %d kg is out of range", in.WeightKg)
	case in.HeightCm <= 0 || in.HeightCm > 300:
		return validationError("height %d cm is out of range", in.HeightCm)
	case in.TrainingDaysPerWeek < 0 || in.TrainingDaysPerWeek > 7:
		return validationError("training days per week must be between 0 and 7")
	}
	return nil
}

type ProfileService interface {
	Get(ctx context.Context, sess *session.Session) (*models.Profile, error)
	// Update stores the profile locally as dirty and, when online, pushes it.
	Update(ctx context.Context, sess *session.Session, in ProfileInput) (*models.Profile, error)
}

type profileService struct {
	store  ProfileStore
	engine Reconciler
	logger logging.Logger
}

func NewProfileService(store ProfileStore, engine Reconciler, logger logging.Logger) ProfileService {
	return &profileService{store: store, engine: engine, logger: logger}
}

// Get returns the cached profile, or an empty one keyed by the session email.
func (s *profileService) Get(ctx context.Context, sess *session.Session) (*models.Profile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &models.Profile{Email: sess.Email}
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, sess *session.Session, in ProfileInput) (*models.Profile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Profile{
		Email:               sess.Email,
		FullName:            strings.TrimSpace(in.FullName),
		Age:                 &in.Age,
		WeightKg:            &in.WeightKg,
		HeightCm:            &in.HeightCm,
		TrainingDaysPerWeek: &in.TrainingDaysPerWeek,
		Dirty:               true,
	}
	if err := s.store.UpsertProfile(ctx, p, true); err != nil {
		return nil, err
	}
	sess.Profile = p

	if err := syncAfterChange(ctx, s.engine, sess, s.logger); err != nil {
		return nil, err
	}
	return s.Get(ctx, sess)
}
