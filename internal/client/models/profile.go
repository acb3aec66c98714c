// Package models defines client-side data models mirrored in the local
// SQLite store: the cached user profile and cached workout records.
package models

// Profile is the cached copy of the account profile. Email is the key.
// Numeric fields are nil until the user completes onboarding.
type Profile struct {
	Email               string
	FullName            string
	Age                 *int
	WeightKg            *int
	HeightCm            *int
	TrainingDaysPerWeek *int

	// Dirty marks local edits the server has not acknowledged yet.
	Dirty bool
}

// Complete reports whether every onboarding field is filled in.
func (p *Profile) Complete() bool {
	if p == nil {
		return false
	}
	return p.FullName != "" &&
		p.Age != nil &&
		p.WeightKg != nil &&
		p.HeightCm != nil &&
		p.TrainingDaysPerWeek != nil
}
