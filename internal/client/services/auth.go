// Package services contains application services for the EvoRun client.
// This file defines the authentication service: online login with an
// offline fallback, logout, registration and a liveness probe.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/evorun/internal/client/client"
	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/reconcile"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/logging"
)

// ErrOfflineLoginUnavailable is returned when the server cannot be reached
// and the credentials do not match the remembered pair.
var ErrOfflineLoginUnavailable = errors.New("offline login unavailable")

// Route tells the UI where to go after login.
type Route string

const (
	RouteOnboarding Route = "onboarding"
	RouteMain       Route = "main"
)

// Reconciler runs a reconciliation for a session.
type Reconciler interface {
	Reconcile(ctx context.Context, sess *session.Session) (*reconcile.Report, error)
}

// AuthStore is the part of the local mirror used by login.
type AuthStore interface {
	GetProfile(ctx context.Context, email string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile, dirty bool) error
	RememberedCredentials(ctx context.Context) (email, password string, err error)
	RememberCredentials(ctx context.Context, email, password string) error
	ForgetCredentials(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, reconcile and return an online
//     session; fall back to an offline session when the server is unreachable
//     and the credentials match the remembered pair.
//   - Logout: drop the session and the remembered pair; cached rows stay.
//   - Register: create a new account on the server.
//   - RememberedEmail: the email to prefill the login prompt with.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, email, password string, remember bool) (*session.Session, Route, error)
	Logout(ctx context.Context, sess *session.Session) error
	Register(ctx context.Context, email, password string) error
	RememberedEmail(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  AuthStore
	engine Reconciler
	logger logging.Logger
}

func NewAuthService(c client.Client, store AuthStore, engine Reconciler, logger logging.Logger) AuthService {
	return &authService{client: c, store: store, engine: engine, logger: logger}
}

func (a *authService) Login(ctx context.Context, email, password string, remember bool) (*session.Session, Route, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	token, err := a.client.Login(ctx, email, password)
	switch client.Classify(err) {
	case client.OutcomeOK:
	case client.OutcomeUnreachable:
		a.logger.Info(ctx, "server unreachable, trying offline login", "email", email)
		return a.offlineLogin(ctx, email, password)
	case client.OutcomeRejected:
		return nil, "", err
	default:
		return nil, "", fmt.Errorf("login: %w", err)
	}

	if remember {
		err = a.store.RememberCredentials(ctx, email, password)
	} else {
		err = a.store.ForgetCredentials(ctx)
	}
	if err != nil {
		return nil, "", err
	}

	sess := session.NewOnline(email, token, nil)
	report, err := a.engine.Reconcile(ctx, sess)
	if err != nil {
		return nil, "", fmt.Errorf("initial sync: %w", err)
	}
	a.logger.Info(ctx, "logged in", "email", email, "sync", report.String())

	profile, err := a.baselineProfile(ctx, sess)
	if err != nil {
		return nil, "", err
	}
	sess.Profile = profile
	return sess, routeFor(profile), nil
}

// baselineProfile fetches the profile once more after reconciliation and
// stores it as the copy offline logins will use. A dirty local profile or an
// unavailable server leaves the cached copy in place.
func (a *authService) baselineProfile(ctx context.Context, sess *session.Session) (*models.Profile, error) {
	local, err := a.store.GetProfile(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	if local != nil && local.Dirty {
		return local, nil
	}

	rp, err := a.client.FetchProfile(ctx, sess.Token)
	if err != nil {
		a.logger.Warn(ctx, "profile refresh failed, using cached copy", "error", err)
		if local == nil {
			local = &models.Profile{Email: sess.Email}
		}
		return local, nil
	}

	p := rp.ToModel()
	p.Email = sess.Email
	if err := a.store.UpsertProfile(ctx, p, false); err != nil {
		return nil, err
	}
	return p, nil
}

// offlineLogin compares the credentials with the pair remembered by the last
// online login. The pair is stored and compared in plain text.
func (a *authService) offlineLogin(ctx context.Context, email, password string) (*session.Session, Route, error) {
	savedEmail, savedPassword, err := a.store.RememberedCredentials(ctx)
	if err != nil {
		return nil, "", err
	}
	if savedEmail == "" || savedEmail != email ||
		subtle.ConstantTimeCompare([]byte(savedPassword), []byte(password)) != 1 {
		return nil, "", ErrOfflineLoginUnavailable
	}

	profile, err := a.store.GetProfile(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		profile = &models.Profile{Email: email}
	}
	return session.NewOffline(email, profile), routeFor(profile), nil
}

func (a *authService) Logout(ctx context.Context, sess *session.Session) error {
	sess.Clear()
	return a.store.ForgetCredentials(ctx)
}

func (a *authService) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}
	return a.client.Register(ctx, email, password)
}

func (a *authService) RememberedEmail(ctx context.Context) (string, error) {
	email, _, err := a.store.RememberedCredentials(ctx)
	return email, err
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func routeFor(p *models.Profile) Route {
	if p.Complete() {
		return RouteMain
	}
	return RouteOnboarding
}
