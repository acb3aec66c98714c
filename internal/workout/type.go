// Package workout holds the workout vocabulary shared by the client and the
// server: the closed set of workout types and the type-specific details
// payloads.
package workout

import (
	"errors"
	"fmt"
	"strings"
)

// Type is a workout kind. The zero value is not a valid type.
type Type string

const (
	TypeRunning       Type = "running"
	TypeCycling       Type = "cycling"
	TypeSwimming      Type = "swimming"
	TypeWeightlifting Type = "weightlifting"
	TypeStairs        Type = "stairs"
)

// ErrUnknownType is returned by ParseType for anything outside the closed set.
var ErrUnknownType = errors.New("unknown workout type")

// Types lists every supported type in display order.
func Types() []Type {
	return []Type{TypeRunning, TypeCycling, TypeSwimming, TypeWeightlifting, TypeStairs}
}

// ParseType normalises s (case and surrounding blanks) and maps it onto the
// closed set. Unknown values are rejected, never defaulted.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	switch t {
	case TypeRunning, TypeCycling, TypeSwimming, TypeWeightlifting, TypeStairs:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// MarshalText lets Type be used directly in JSON payloads.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	return []byte(t), nil
}

// UnmarshalText accepts any casing, mirroring the server's lenient parsing.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UsesDistance reports whether distance_km is meaningful for t.
func (t Type) UsesDistance() bool {
	switch t {
	case TypeRunning, TypeCycling, TypeSwimming:
		return true
	}
	return false
}
