// Package services holds the server business logic between the HTTP
// handlers and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/server/auth"
	"github.com/dmitrijs2005/evorun/internal/server/config"
	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// bcrypt cost, lowered in tests.
var passwordCost = bcrypt.DefaultCost

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	return email, nil
}

// Register creates an account. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(strconv.FormatInt(userID, 10), s.jwtSecret, s.accessTokenValidityDuration)
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords are reported the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Authenticate resolves a bearer token into a user id.
func (s *UserService) Authenticate(token string) (int64, error) {
	sub, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

func validateProfile(p models.Profile) error {
	inRange := func(v *int, lo, hi int) bool { return v == nil || (*v >= lo && *v <= hi) }
	switch {
	case strings.TrimSpace(p.FullName) == "":
		return fmt.Errorf("%w: full_name is required", common.ErrorValidation)
	case !inRange(p.Age, 1, 130):
		return fmt.Errorf("%w: age is out of range", common.ErrorValidation)
	case !inRange(p.WeightKg, 1, 500):
		return fmt.Errorf("%w: weight_kg is out of range", common.ErrorValidation)
	case !inRange(p.HeightCm, 1, 300):
		return fmt.Errorf("%w: height_cm is out of range", common.ErrorValidation)
	case !inRange(p.TrainingDaysPerWeek, 0, 7):
		return fmt.Errorf("%w: training_days_per_week must be between 0 and 7", common.ErrorValidation)
	}
	return nil
}

// UpdateProfile replaces the profile fields of userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, p models.Profile) (*models.User, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	p.FullName = strings.TrimSpace(p.FullName)
	return s.repomanager.Users(s.db).UpdateProfile(ctx, userID, p)
}
