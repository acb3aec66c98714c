package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/evorun/internal/client/services"
	"github.com/dmitrijs2005/evorun/internal/common"
)

// Profile prints the cached profile.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.profiles.Get(ctx, a.sess)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, formatProfile(p))
	return nil
}

// Onboarding asks for every profile field, prefilled with the cached values.
func (a *App) Onboarding(ctx context.Context) error {
	cur, err := a.profiles.Get(ctx, a.sess)
	if err != nil {
		return err
	}

	var in services.ProfileInput
	if in.FullName, err = a.getWithDefault("Full name", cur.FullName); err != nil {
		return err
	}
	if in.Age, err = a.promptInt("Age", cur.Age); err != nil {
		return err
	}
	if in.WeightKg, err = a.promptInt("Weight, kg", cur.WeightKg); err != nil {
		return err
	}
	if in.HeightCm, err = a.promptInt("Height, cm", cur.HeightCm); err != nil {
		return err
	}
	if in.TrainingDaysPerWeek, err = a.promptInt("Training days per week (0-7)", cur.TrainingDaysPerWeek); err != nil {
		return err
	}

	p, err := a.profiles.Update(ctx, a.sess, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile saved")
	fmt.Fprint(a.out, formatProfile(p))
	return nil
}

func (a *App) promptInt(prompt string, current *int) (int, error) {
	def := ""
	if current != nil {
		def = strconv.Itoa(*current)
	}
	s, err := a.getWithDefault(prompt, def)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", common.ErrorValidation, prompt)
	}
	return n, nil
}
