package workout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDetails wraps every details validation failure.
var ErrInvalidDetails = errors.New("invalid workout details")

// ElevationDetails applies to running and cycling.
type ElevationDetails struct {
	ElevationLevel int `json:"elevation_level"`
}

// SwimmingDetails records the pool length.
type SwimmingDetails struct {
	PoolSizeMeters int `json:"pool_size_meters"`
}

// WeightliftingDetails describes a single exercise block.
type WeightliftingDetails struct {
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

// StairsDetails optionally counts steps.
type StairsDetails struct {
	Steps *int `json:"steps"`
}

// DefaultDetails returns the payload a new workout of type t starts with.
func DefaultDetails(t Type) (json.RawMessage, error) {
	var v any
	switch t {
	case TypeRunning, TypeCycling:
		v = ElevationDetails{}
	case TypeSwimming:
		v = SwimmingDetails{PoolSizeMeters: 50}
	case TypeWeightlifting:
		v = WeightliftingDetails{}
	case TypeStairs:
		v = StairsDetails{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	return json.Marshal(v)
}

// NormalizeDetails decodes raw according to t, applies the defaults of the
// type and re-encodes it. Unknown fields are rejected so that a payload meant
// for another type cannot slip through. Empty input yields the defaults.
func NormalizeDetails(t Type, raw json.RawMessage) (json.RawMessage, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if t == TypeWeightlifting {
			return nil, fmt.Errorf("%w: weightlifting requires exercise, sets, reps and weight_kg", ErrInvalidDetails)
		}
		return DefaultDetails(t)
	}

	var v any
	switch t {
	case TypeRunning, TypeCycling:
		d := ElevationDetails{}
		if err := strictDecode(raw, &d); err != nil {
			return nil, err
		}
		if d.ElevationLevel < 0 {
			return nil, fmt.Errorf("%w: elevation_level must not be negative", ErrInvalidDetails)
		}
		v = d
	case TypeSwimming:
		d := SwimmingDetails{PoolSizeMeters: 50}
		if err := strictDecode(raw, &d); err != nil {
			return nil, err
		}
		if d.PoolSizeMeters <= 0 {
			return nil, fmt.Errorf("%w: pool_size_meters must be positive", ErrInvalidDetails)
		}
		v = d
	case TypeWeightlifting:
		d := WeightliftingDetails{}
		if err := strictDecode(raw, &d); err != nil {
			return nil, err
		}
		if d.Exercise == "" || d.Sets <= 0 || d.Reps <= 0 || d.WeightKg < 0 {
			return nil, fmt.Errorf("%w: weightlifting requires exercise, sets, reps and weight_kg", ErrInvalidDetails)
		}
		v = d
	case TypeStairs:
		d := StairsDetails{}
		if err := strictDecode(raw, &d); err != nil {
			return nil, err
		}
		if d.Steps != nil && *d.Steps < 0 {
			return nil, fmt.Errorf("%w: steps must not be negative", ErrInvalidDetails)
		}
		v = d
	}
	return json.Marshal(v)
}

func strictDecode(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDetails, err)
	}
	return nil
}
