package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/evorun/internal/client/client"
	"github.com/dmitrijs2005/evorun/internal/client/reconcile"
	"github.com/dmitrijs2005/evorun/internal/client/services"
	"github.com/dmitrijs2005/evorun/internal/common"
)

// Register prompts the user for an email and password and creates a new
// account on the server. Registration needs the server; there is no
// offline fallback.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can log in now")
	return nil
}

// Login prompts for credentials and starts a session.
//
// The email prompt is prefilled with the remembered address. An unreachable
// server falls back to an offline session when the credentials match the
// remembered pair. An incomplete profile sends the user to onboarding.
func (a *App) Login(ctx context.Context) error {
	remembered, err := a.authService.RememberedEmail(ctx)
	if err != nil {
		return err
	}

	email, err := a.getWithDefault("Enter email", remembered)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	answer, err := getSimpleText(a.reader, "Remember me for offline login? (y/N)", a.out)
	if err != nil {
		return err
	}
	remember := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")

	sess, route, err := a.authService.Login(ctx, email, string(password), remember)
	if err != nil {
		return err
	}

	a.sess = sess
	a.setMode(sess.Mode)
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", sess.Email, sess.Mode)

	if route == services.RouteOnboarding {
		fmt.Fprintln(a.out, "Your profile is incomplete, let's fill it in")
		return a.Onboarding(ctx)
	}
	return nil
}

// Logout drops the session. Cached workouts stay on disk.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx, a.sess); err != nil {
		return err
	}
	a.sess = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// report prints a handler error in user terms.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.logger.Debug(context.Background(), "command failed", "error", err)

	var se *client.ServerError
	switch {
	case errors.Is(err, services.ErrOfflineLoginUnavailable):
		fmt.Fprintln(a.out, "Server unreachable and the credentials do not match the remembered ones, offline login unavailable")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Rejected by the server: check your email and password")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unreachable, try again later")
	case errors.Is(err, common.ErrorAlreadyExists):
		fmt.Fprintln(a.out, "An account with this email already exists")
	case errors.Is(err, common.ErrorValidation):
		fmt.Fprintf(a.out, "Invalid input: %v\n", err)
	case errors.Is(err, common.ErrorNotFound):
		fmt.Fprintln(a.out, "Workout not found")
	case errors.Is(err, services.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Please log in first")
	case errors.Is(err, reconcile.ErrSyncInProgress):
		fmt.Fprintln(a.out, "A sync is already running")
	case errors.As(err, &se):
		fmt.Fprintf(a.out, "Server error (%d): %s\n", se.StatusCode, se.Detail)
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
