package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/client/models"
)

func formatWorkoutLine(w *models.Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-4d %s  %-13s", w.LocalID, w.Date.In(time.Local).Format(dateTimeLayout), w.Type)
	if w.DurationMinutes != nil {
		fmt.Fprintf(&b, " %4d min", *w.DurationMinutes)
	} else {
		b.WriteString("        -")
	}
	if w.DistanceKm != nil {
		fmt.Fprintf(&b, " %7.2f km", *w.DistanceKm)
	}
	if s := w.State(); s != models.StateSynced {
		fmt.Fprintf(&b, "  [%s]", s)
	}
	return b.String()
}

func formatWorkout(w *models.Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workout #%d\n", w.LocalID)
	fmt.Fprintf(&b, "  Type:     %s\n", w.Type)
	fmt.Fprintf(&b, "  Date:     %s\n", w.Date.In(time.Local).Format(dateTimeLayout))
	if w.DurationMinutes != nil {
		fmt.Fprintf(&b, "  Duration: %d min\n", *w.DurationMinutes)
	}
	if w.DistanceKm != nil {
		fmt.Fprintf(&b, "  Distance: %.2f km\n", *w.DistanceKm)
	}
	if len(w.Details) > 0 {
		fmt.Fprintf(&b, "  Details:  %s\n", w.Details)
	}
	fmt.Fprintf(&b, "  State:    %s\n", w.State())
	return b.String()
}

func formatProfile(p *models.Profile) string {
	var b strings.Builder
	field := func(name string, v *int, unit string) {
		if v == nil {
			fmt.Fprintf(&b, "  %-14s -\n", name+":")
			return
		}
		fmt.Fprintf(&b, "  %-14s %d%s\n", name+":", *v, unit)
	}

	fmt.Fprintf(&b, "Profile of %s\n", p.Email)
	name := p.FullName
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(&b, "  %-14s %s\n", "Name:", name)
	field("Age", p.Age, "")
	field("Weight", p.WeightKg, " kg")
	field("Height", p.HeightCm, " cm")
	field("Training days", p.TrainingDaysPerWeek, "/week")
	if p.Dirty {
		b.WriteString("  (not synced yet)\n")
	}
	if !p.Complete() {
		b.WriteString("  Profile incomplete, run 'onboarding'\n")
	}
	return b.String()
}
