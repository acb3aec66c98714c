// Package httpapi serves the EvoRun REST API consumed by the client.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/logging"
	"github.com/dmitrijs2005/evorun/internal/server/models"
	"github.com/dmitrijs2005/evorun/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiPrefix = "/api/v1"

type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(token string) (int64, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, p models.Profile) (*models.User, error)
}

type WorkoutService interface {
	Create(ctx context.Context, ownerID int64, in services.WorkoutInput, idempotencyKey string) (*models.Workout, bool, error)
	List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Workout, error)
	Update(ctx context.Context, ownerID, id int64, in services.WorkoutInput) (*models.Workout, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type Handler struct {
	users    UserService
	workouts WorkoutService
	logger   logging.Logger
}

func NewHandler(users UserService, workouts WorkoutService, logger logging.Logger) *Handler {
	return &Handler{users: users, workouts: workouts, logger: logger}
}

// Routes returns the instrumented router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST "+apiPrefix+"/login/token", h.login)
	mux.HandleFunc("POST "+apiPrefix+"/users/{$}", h.register)
	mux.HandleFunc("GET "+apiPrefix+"/users/me/{$}", h.requireAuth(h.me))
	mux.HandleFunc("PUT "+apiPrefix+"/users/me/profile", h.requireAuth(h.updateProfile))

	mux.HandleFunc("GET "+apiPrefix+"/workouts/{$}", h.requireAuth(h.listWorkouts))
	mux.HandleFunc("POST "+apiPrefix+"/workouts/{$}", h.requireAuth(h.createWorkout))
	mux.HandleFunc("PUT "+apiPrefix+"/workouts/{id}", h.requireAuth(h.updateWorkout))
	mux.HandleFunc("DELETE "+apiPrefix+"/workouts/{id}", h.requireAuth(h.deleteWorkout))

	return instrument(h.logger, mux)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, detail)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed form body")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: common.TokenTypeBearer})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed body: "+err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.fail(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	user, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed body: "+err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, req.toModel())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "skip must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", services.DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
		return
	}

	list, err := h.workouts.List(r.Context(), owner, skip, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]workoutResponse, 0, len(list))
	for _, wk := range list {
		out = append(out, toWorkoutResponse(wk))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())

	var req workoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed body: "+err.Error())
		return
	}

	key := r.Header.Get(common.IdempotencyKeyHeaderName)
	wk, created, err := h.workouts.Create(r.Context(), owner, req.toInput(), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
		h.logger.Debug(r.Context(), "workout create replayed", "workout_id", wk.ID)
	}
	writeJSON(w, status, toWorkoutResponse(wk))
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) updateWorkout(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid workout id")
		return
	}

	var req workoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed body: "+err.Error())
		return
	}

	wk, err := h.workouts.Update(r.Context(), owner, id, req.toInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutResponse(wk))
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid workout id")
		return
	}

	if err := h.workouts.Delete(r.Context(), owner, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
