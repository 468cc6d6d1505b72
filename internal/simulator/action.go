package simulator

import (
	"math"

	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// Action is the control decision taken over one hour.
type Action int

const (
	ActionNone Action = iota
	// ActionClamp cools only what keeps the room at or below setpoint.
	ActionClamp
	// ActionPrecool cools one extra step below the clamp target.
	ActionPrecool
)

func (a Action) String() string {
	switch a {
	case ActionClamp:
		return "clamp"
	case ActionPrecool:
		return "precool"
	default:
		return "none"
	}
}

// actions are evaluated in this order from every reachable state.
var actions = []Action{ActionClamp, ActionPrecool}

// outcome of applying an action for one hour.
type outcome struct {
	target float64 // end-of-hour interior temperature aimed at
	heat   float64 // heat removed, J
}

// apply returns the outcome of the action given the free-drift temperature at
// the end of the hour. ok is false when the action is not available.
func (a Action) apply(sc Scenario, params thermal.Params, noClim float64) (o outcome, ok bool) {
	floor := sc.ComfortFloor()
	clampTarget := math.Max(math.Min(noClim, sc.Setpoint), floor)
	clampHeat := params.HeatToRemove(noClim, clampTarget)

	switch a {
	case ActionClamp:
		return outcome{target: clampTarget, heat: clampHeat}, true
	case ActionPrecool:
		if clampTarget <= floor {
			return outcome{}, false
		}
		target := math.Max(clampTarget-PrecoolStep, floor)
		return outcome{target: target, heat: clampHeat + (clampTarget-target)*params.C}, true
	default:
		return outcome{}, false
	}
}
