package thermal

import (
	"fmt"
	"strings"
)

// Insulation is an integer enum grading the room envelope.
type Insulation int

const (
	InsulationUnknown Insulation = iota
	InsulationPoor
	InsulationMedium
	InsulationGood
)

func (i Insulation) Valid() bool {
	return i == InsulationPoor || i == InsulationMedium || i == InsulationGood
}

func (i Insulation) String() string {
	switch i {
	case InsulationPoor:
		return "poor"
	case InsulationMedium:
		return "medium"
	case InsulationGood:
		return "good"
	default:
		return "unknown"
	}
}

// Transmittance returns the envelope U value in W/(m²·K).
// Anything that is not poor or good is treated as medium.
func (i Insulation) Transmittance() float64 {
	switch i {
	case InsulationPoor:
		return 3.0
	case InsulationGood:
		return 1.0
	default:
		return 2.0
	}
}

func ParseInsulation(s string) (Insulation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "poor":
		return InsulationPoor, nil
	case "medium":
		return InsulationMedium, nil
	case "good":
		return InsulationGood, nil
	default:
		return InsulationUnknown, fmt.Errorf("%w: %q", ErrInvalidInsulation, s)
	}
}

// UnitType is an integer enum for the air conditioner generation.
type UnitType int

const (
	UnitUnknown UnitType = iota
	UnitStandard
	UnitOlder
	UnitHighEfficiency
)

func (u UnitType) Valid() bool {
	return u == UnitStandard || u == UnitOlder || u == UnitHighEfficiency
}

func (u UnitType) String() string {
	switch u {
	case UnitStandard:
		return "standard"
	case UnitOlder:
		return "older"
	case UnitHighEfficiency:
		return "high_efficiency"
	default:
		return "unknown"
	}
}

// ParseUnitType accepts both the snake_case names returned by String and the
// CamelCase labels used in forms ("HighEfficiency").
func ParseUnitType(s string) (UnitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return UnitStandard, nil
	case "older":
		return UnitOlder, nil
	case "high_efficiency", "highefficiency", "high-efficiency":
		return UnitHighEfficiency, nil
	default:
		return UnitUnknown, fmt.Errorf("%w: %q", ErrInvalidUnitType, s)
	}
}
