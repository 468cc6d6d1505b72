package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

func TestNearestLevel(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want int
	}{
		{"exact setpoint", 0, 0},
		{"exact level", 1.5, 3},
		{"closer to lower", 0.2, 0},
		{"closer to upper", 0.3, 1},
		{"tie goes to lowest index", 0.25, 0},
		{"another tie", 1.75, 3},
		{"above the lattice", 3.1, 4},
		{"warmer than setpoint", -0.4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nearestLevel(Levels, tt.x); got != tt.want {
				t.Fatalf("nearestLevel(%v)=%d want %d", tt.x, got, tt.want)
			}
		})
	}
}

func TestActionApply(t *testing.T) {
	sc := DefaultScenario() // setpoint 24, floor 22
	params := thermal.Params{UA: 40, C: 1000}

	tests := []struct {
		name       string
		action     Action
		noClim     float64
		wantOK     bool
		wantTarget float64
		wantHeat   float64
	}{
		{"clamp above setpoint", ActionClamp, 25, true, 24, 1000},
		{"clamp drifting below setpoint", ActionClamp, 23.2, true, 23.2, 0},
		{"clamp below floor targets floor without cooling", ActionClamp, 21, true, 22, 0},
		{"precool above setpoint", ActionPrecool, 25, true, 23.5, 1500},
		{"precool stops at floor", ActionPrecool, 22.3, true, 22, 300},
		{"precool unavailable at floor", ActionPrecool, 22, false, 0, 0},
		{"precool unavailable below floor", ActionPrecool, 21, false, 0, 0},
		{"none is never available", ActionNone, 25, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := tt.action.apply(sc, params, tt.noClim)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.wantTarget, o.target, 1e-9)
			assert.InDelta(t, tt.wantHeat, o.heat, 1e-6)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "clamp", ActionClamp.String())
	assert.Equal(t, "precool", ActionPrecool.String())
	assert.Equal(t, "none", ActionNone.String())
	assert.Equal(t, "none", Action(9).String())
}

func TestLatticeImproveIsStrict(t *testing.T) {
	l := newLattice(1, Levels)
	require.True(t, l.improve(1, 0, 2, 10, ActionClamp))
	assert.False(t, l.improve(1, 3, 2, 10, ActionPrecool), "equal cost must not overwrite")
	assert.Equal(t, cell{cost: 10, prev: 0, action: ActionClamp}, l.cells[1][2])

	require.True(t, l.improve(1, 4, 2, 9, ActionPrecool))
	assert.Equal(t, cell{cost: 9, prev: 4, action: ActionPrecool}, l.cells[1][2])
}

func TestLatticeCheapestTieBreak(t *testing.T) {
	l := newLattice(1, Levels)
	l.cells[1][3].cost = 5
	l.cells[1][1].cost = 5
	assert.Equal(t, 1, l.cheapest(1))

	// all unreachable: the first level is returned
	assert.Equal(t, 0, newLattice(1, Levels).cheapest(1))
}

// A finite cell that no transition ever wrote has no predecessor; the walk
// falls back to the setpoint level. Plan never produces such a cell, this only
// pins the fallback down.
func TestBacktrackMissingPredecessorFallsBackToSetpoint(t *testing.T) {
	l := newLattice(3, Levels)
	l.cells[1][0] = cell{cost: 1, prev: 0, action: ActionClamp}
	l.cells[2][4] = cell{cost: 2, prev: -1} // finite, written by hand
	l.cells[3][2] = cell{cost: 3, prev: 4, action: ActionPrecool}

	devs, acts := l.backtrack(2)
	assert.Equal(t, []float64{0, 0, 2.0, 1.0}, devs)
	assert.Equal(t, []Action{ActionClamp, ActionNone, ActionPrecool}, acts)
}

func TestPlanReferenceScenario(t *testing.T) {
	plan := NewDefault().Plan(DefaultScenario())

	want := []float64{
		0, 0.5, 1, 1.5, 2, 2, 2, 2, 2, 1.5, 0.5, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.5,
	}
	require.Len(t, plan.Deviations, 25)
	require.Len(t, plan.Actions, 24)
	assert.Equal(t, want, plan.Deviations)
	for h, a := range plan.Actions {
		assert.Equal(t, ActionClamp, a, "hour %d", h)
	}
	assert.InDelta(t, 2594377.29, plan.Cost, 5)
}

func TestOptimizedReferenceScenario(t *testing.T) {
	sim := NewDefault()
	sc := DefaultScenario()

	opt, plan := sim.Optimized(sc)
	base := sim.Baseline(sc)

	assert.LessOrEqual(t, opt.TotalEnergy(), base.TotalEnergy())
	// replaying the snapped levels chases targets the baseline never does and
	// costs more here, so the clamp-only trajectory is kept
	assert.False(t, plan.Adopted)
	assert.Equal(t, base, opt)
}

func TestOptimizedAdoptsPrecoolingWhenCheaper(t *testing.T) {
	// a mild first hour (COP 4.05) before a very hot one (COP floored at 1)
	sim := New([]float64{24.5, 60})
	sc := DefaultScenario()

	opt, plan := sim.Optimized(sc)
	base := sim.Baseline(sc)

	require.True(t, plan.Adopted)
	assert.Equal(t, []float64{0, 0.5, 0}, plan.Deviations)
	assert.Equal(t, []Action{ActionPrecool, ActionClamp}, plan.Actions)
	assert.Equal(t, []float64{23.5, 24}, opt.Interior)
	assert.Equal(t, []float64{24, 24}, base.Interior)

	assert.InDelta(t, 4079519.29, opt.TotalEnergy(), 5)
	assert.InDelta(t, 4135801.69, base.TotalEnergy(), 5)
	// the replay follows exact lattice levels here, so the estimate is exact
	assert.InDelta(t, plan.Cost, opt.TotalEnergy(), 1e-3)
}

func TestOptimizedAllSetpointPlanMatchesBaseline(t *testing.T) {
	// the exterior never lets the room drift under a 16°C setpoint
	sim := NewDefault()
	sc := DefaultScenario()
	sc.Setpoint = 16

	opt, plan := sim.Optimized(sc)
	require.True(t, plan.Adopted)
	for _, d := range plan.Deviations {
		assert.Equal(t, 0.0, d)
	}
	assert.Equal(t, sim.Baseline(sc), opt)
}

func TestOptimizedNeverCostsMoreThanBaseline(t *testing.T) {
	sim := NewDefault()
	for _, sc := range scenarioGrid() {
		opt, _ := sim.Optimized(sc)
		base := sim.Baseline(sc)
		assert.LessOrEqual(t, opt.TotalEnergy(), base.TotalEnergy(), "scenario %+v", sc)
	}
}

func TestOptimizedCoolingRespectsComfortFloor(t *testing.T) {
	sim := NewDefault()
	for _, sc := range scenarioGrid() {
		opt, _ := sim.Optimized(sc)
		floor := sc.ComfortFloor()
		for h, e := range opt.Energy {
			if e > 0 {
				assert.GreaterOrEqual(t, opt.Interior[h], floor-0.05, "scenario %+v hour %d", sc, h)
			}
		}
	}
}

func TestOptimizedStaysAboveFloorWhenExteriorDoes(t *testing.T) {
	// with 20°C the coldest exterior hour, setpoints up to 22 keep the
	// exterior at or above the floor all day
	sim := NewDefault()
	for _, sc := range scenarioGrid() {
		if sc.Setpoint > 22 {
			continue
		}
		opt, _ := sim.Optimized(sc)
		assert.GreaterOrEqual(t, opt.MinInterior(), sc.ComfortFloor()-0.05, "scenario %+v", sc)
	}
}

func TestOptimizedIsDeterministic(t *testing.T) {
	sc := Scenario{Surface: 75, Height: 3, Insulation: thermal.InsulationPoor, Setpoint: 22.5, Unit: thermal.UnitOlder}

	a, planA := NewDefault().Optimized(sc)
	b, planB := NewDefault().Optimized(sc)

	assert.Equal(t, a, b)
	assert.Equal(t, planA, planB)
	assert.Equal(t, math.Float64bits(a.TotalEnergy()), math.Float64bits(b.TotalEnergy()))
}

func TestOptimizedEmptyProfile(t *testing.T) {
	opt, plan := New(nil).Optimized(DefaultScenario())
	assert.Equal(t, 0, opt.Hours())
	assert.Equal(t, []float64{0}, plan.Deviations)
	assert.Empty(t, plan.Actions)
	assert.True(t, plan.Adopted)
}
