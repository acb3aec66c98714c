package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/models"
	"github.com/dmitrijs2005/evorun/internal/client/services"
	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/workout"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// now is a test seam.
var now = time.Now

func (a *App) AddWorkout(ctx context.Context) error {
	in, err := a.promptWorkout(nil)
	if err != nil {
		return err
	}
	w, err := a.workouts.Add(ctx, a.sess, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added workout #%d (%s)\n", w.LocalID, w.State())
	return nil
}

// List prints workouts: all of them, one day ("list 2025-05-01") or an
// inclusive range of days ("list 2025-05-01 2025-05-07").
func (a *App) List(ctx context.Context, args []string) error {
	var (
		list []*models.Workout
		err  error
	)
	switch len(args) {
	case 0:
		list, err = a.workouts.List(ctx, a.sess)
	case 1:
		var day time.Time
		if day, err = parseDay(args[0]); err != nil {
			return err
		}
		list, err = a.workouts.ListForDate(ctx, a.sess, day)
	default:
		var from, to time.Time
		if from, err = parseDay(args[0]); err != nil {
			return err
		}
		if to, err = parseDay(args[1]); err != nil {
			return err
		}
		list, err = a.workouts.ListForRange(ctx, a.sess, from, to.AddDate(0, 0, 1))
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No workouts")
		return nil
	}
	for _, w := range list {
		fmt.Fprintln(a.out, formatWorkoutLine(w))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.workoutID(args)
	if err != nil {
		return err
	}
	w, err := a.workouts.Get(ctx, a.sess, id)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, formatWorkout(w))
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.workoutID(args)
	if err != nil {
		return err
	}
	cur, err := a.workouts.Get(ctx, a.sess, id)
	if err != nil {
		return err
	}
	in, err := a.promptWorkout(cur)
	if err != nil {
		return err
	}
	w, err := a.workouts.Edit(ctx, a.sess, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved workout #%d (%s)\n", w.LocalID, w.State())
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.workoutID(args)
	if err != nil {
		return err
	}
	if err := a.workouts.Delete(ctx, a.sess, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted workout #%d\n", id)
	return nil
}

func (a *App) workoutID(args []string) (int64, error) {
	var s string
	if len(args) > 0 {
		s = args[0]
	} else {
		var err error
		if s, err = getSimpleText(a.reader, "Enter workout id", a.out); err != nil {
			return 0, err
		}
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a workout id", common.ErrorValidation, s)
	}
	return id, nil
}

// promptWorkout asks for the workout fields. With cur set every prompt is
// prefilled and an empty answer keeps the current value.
func (a *App) promptWorkout(cur *models.Workout) (services.WorkoutInput, error) {
	var in services.WorkoutInput

	names := make([]string, 0, len(workout.Types()))
	for _, t := range workout.Types() {
		names = append(names, t.String())
	}

	var curType, curDate, curDuration, curDistance string
	if cur != nil {
		curType = cur.Type.String()
		curDate = cur.Date.In(time.Local).Format(dateTimeLayout)
		if cur.DurationMinutes != nil {
			curDuration = strconv.Itoa(*cur.DurationMinutes)
		}
		if cur.DistanceKm != nil {
			curDistance = strconv.FormatFloat(*cur.DistanceKm, 'f', -1, 64)
		}
	}

	s, err := a.getWithDefault("Workout type ("+strings.Join(names, ", ")+")", curType)
	if err != nil {
		return in, err
	}
	if in.Type, err = workout.ParseType(s); err != nil {
		return in, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	if s, err = a.getWithDefault("Date (YYYY-MM-DD or YYYY-MM-DD HH:MM, empty for now)", curDate); err != nil {
		return in, err
	}
	if in.Date, err = parseWhen(s); err != nil {
		return in, err
	}

	if s, err = a.getWithDefault("Duration, minutes (empty to skip)", curDuration); err != nil {
		return in, err
	}
	if in.DurationMinutes, err = optionalInt(s, "duration"); err != nil {
		return in, err
	}

	if in.Type.UsesDistance() {
		if s, err = a.getWithDefault("Distance, km (empty to skip)", curDistance); err != nil {
			return in, err
		}
		if in.DistanceKm, err = optionalFloat(s, "distance"); err != nil {
			return in, err
		}
	}

	prompt := "Details as JSON (empty for defaults)"
	keep := cur != nil && cur.Type == in.Type
	if keep {
		prompt = fmt.Sprintf("Details as JSON (empty keeps %s)", string(cur.Details))
	}
	details, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return in, err
	}
	switch {
	case details != "":
		if !json.Valid([]byte(details)) {
			return in, fmt.Errorf("%w: details are not valid JSON", common.ErrorValidation)
		}
		in.Details = json.RawMessage(details)
	case keep:
		in.Details = cur.Details
	}
	return in, nil
}

func parseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", common.ErrorValidation, s)
	}
	return d, nil
}

func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	return parseDay(s)
}

func optionalInt(s, field string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a whole number", common.ErrorValidation, field)
	}
	return &n, nil
}

func optionalFloat(s, field string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", common.ErrorValidation, field)
	}
	return &f, nil
}
