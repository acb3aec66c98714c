package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/client"
	"github.com/dmitrijs2005/evorun/internal/client/config"
	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/reconcile"
	"github.com/dmitrijs2005/evorun/internal/client/services"
	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/client/store"
	"github.com/dmitrijs2005/evorun/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// SyncStatus exposes the bookkeeping shown by the status command.
type SyncStatus interface {
	LastSyncAt(ctx context.Context) (time.Time, error)
	ListDirtyWorkouts(ctx context.Context, email string) ([]*models.Workout, error)
	ListPendingDeletions(ctx context.Context, email string) ([]*models.Workout, error)
}

// Deps groups everything the App needs. Construct it in main.
type Deps struct {
	Config   *config.Config
	Auth     services.AuthService
	Workouts services.WorkoutService
	Profiles services.ProfileService
	Engine   services.Reconciler
	Status   SyncStatus
	Logger   logging.Logger
	// Gatherer feeds the counters shown by status. Defaults to the
	// process-wide registry.
	Gatherer prometheus.Gatherer
	In       io.Reader
	Out      io.Writer
}

// lockedWriter serializes writes from the REPL and the watcher goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	workouts    services.WorkoutService
	profiles    services.ProfileService
	engine      services.Reconciler
	status      SyncStatus
	logger      logging.Logger
	gatherer    prometheus.Gatherer

	reader *bufio.Reader
	out    io.Writer

	sess *session.Session

	mu   sync.Mutex
	mode session.Mode
}

func NewApp(d Deps) *App {
	in, out := d.In, d.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &App{
		config:      d.Config,
		authService: d.Auth,
		workouts:    d.Workouts,
		profiles:    d.Profiles,
		engine:      d.Engine,
		status:      d.Status,
		logger:      logger,
		gatherer:    gatherer,
		reader:      bufio.NewReader(in),
		out:         &lockedWriter{w: out},
	}
}

// Build opens the local mirror, creates the HTTP client and wires the
// services. The returned close function releases the mirror.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, func() error, error) {
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	engine := reconcile.NewEngine(st, apiClient, logger)
	app := NewApp(Deps{
		Config:   cfg,
		Auth:     services.NewAuthService(apiClient, st, engine, logger),
		Workouts: services.NewWorkoutService(st, engine, logger),
		Profiles: services.NewProfileService(st, engine, logger),
		Engine:   engine,
		Status:   st,
		Logger:   logger,
	})
	return app, st.Close, nil
}

// setMode updates the displayed connectivity. It never touches the session.
func (a *App) setMode(mode session.Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "\nSwitched to %s mode\n", mode)
	}
}

func (a *App) currentMode() session.Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.sess != nil && a.sess.Email != ""
}

// getStatus renders the prompt prefix, e.g. "(ann@x.com online)".
func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = a.sess.Email + " "
	}
	if m := a.currentMode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run logs the user in, starts the connectivity watcher and blocks in the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to EvoRun (type 'help' for commands)")

	if err := a.Login(ctx); err != nil {
		a.report(err)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// displayed mode. It never starts a reconciliation.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(session.ModeOffline)
			} else {
				a.setMode(session.ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
