package simulator

import (
	"math"

	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

const (
	// ComfortBand is how far below setpoint the optimizer may cool the room.
	ComfortBand = 2.0
	// PrecoolStep is the extra cooling of ActionPrecool, °C.
	PrecoolStep = 0.5
)

// Levels are the deviations below setpoint (°C) a room may sit at on an hour
// boundary in the optimizer's state lattice. Index 0 is the setpoint itself.
var Levels = []float64{0.0, 0.5, 1.0, 1.5, 2.0}

// Plan is the control trajectory recovered from the lattice.
type Plan struct {
	// Deviations below setpoint at each hour boundary, hours+1 values.
	Deviations []float64
	// Actions taken during each hour.
	Actions []Action
	// Cost is the lattice estimate of the electrical energy, J.
	Cost float64
	// Adopted is false when replaying the plan cost more than the clamp-only
	// policy, in which case the optimized trace is the clamp-only one.
	Adopted bool
}

type cell struct {
	cost   float64
	prev   int // -1 until a transition reaches the cell
	action Action
}

type lattice struct {
	levels []float64
	cells  [][]cell // [boundary][level]
}

func newLattice(hours int, levels []float64) *lattice {
	cells := make([][]cell, hours+1)
	for h := range cells {
		row := make([]cell, len(levels))
		for j := range row {
			row[j] = cell{cost: math.Inf(1), prev: -1}
		}
		cells[h] = row
	}
	return &lattice{levels: levels, cells: cells}
}

// improve records the transition if it strictly lowers the destination cost.
func (l *lattice) improve(h, from, to int, cost float64, a Action) bool {
	dst := &l.cells[h][to]
	if cost < dst.cost {
		*dst = cell{cost: cost, prev: from, action: a}
		return true
	}
	return false
}

// cheapest returns the lowest-cost level at boundary h, the lowest index
// winning ties.
func (l *lattice) cheapest(h int) int {
	best := 0
	for j := 1; j < len(l.cells[h]); j++ {
		if l.cells[h][j].cost < l.cells[h][best].cost {
			best = j
		}
	}
	return best
}

// backtrack walks predecessors from the final level back to boundary 0. A
// cell without predecessor falls back to the setpoint level.
func (l *lattice) backtrack(final int) ([]float64, []Action) {
	hours := len(l.cells) - 1
	deviations := make([]float64, hours+1)
	acts := make([]Action, hours)

	deviations[hours] = l.levels[final]
	cur := final
	for h := hours; h > 0; h-- {
		c := l.cells[h][cur]
		acts[h-1] = c.action
		if c.prev < 0 {
			cur = nearestLevel(l.levels, 0)
			deviations[h-1] = 0
			continue
		}
		cur = c.prev
		deviations[h-1] = l.levels[cur]
	}
	return deviations, acts
}

// nearestLevel snaps a deviation onto the lattice; the first (lowest) index
// wins exact ties.
func nearestLevel(levels []float64, x float64) int {
	best := 0
	bestDist := math.Abs(levels[0] - x)
	for k := 1; k < len(levels); k++ {
		if d := math.Abs(levels[k] - x); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// Plan fills the lattice forward and recovers the cheapest trajectory. The
// room starts exactly at setpoint.
func (s *Simulator) Plan(sc Scenario) Plan {
	params := sc.Params()
	lat := newLattice(len(s.exterior), Levels)
	lat.cells[0][nearestLevel(Levels, 0)].cost = 0

	for h, tExt := range s.exterior {
		cop := thermal.COP(sc.Unit, tExt)
		for j, x := range Levels {
			base := lat.cells[h][j].cost
			if math.IsInf(base, 1) {
				continue
			}
			noClim := params.Relax(sc.Setpoint-x, tExt, Step)
			for _, a := range actions {
				o, ok := a.apply(sc, params, noClim)
				if !ok {
					continue
				}
				to := nearestLevel(Levels, sc.Setpoint-o.target)
				lat.improve(h+1, j, to, base+o.heat/cop, a)
			}
		}
	}

	final := lat.cheapest(len(s.exterior))
	deviations, acts := lat.backtrack(final)
	return Plan{
		Deviations: deviations,
		Actions:    acts,
		Cost:       lat.cells[len(s.exterior)][final].cost,
	}
}

// Optimized computes the lattice plan and replays it through the continuous
// model. The clamp-only trajectory is part of the optimizer's action space, so
// when the replayed plan turns out more expensive the clamp-only trace is
// returned instead and the plan is marked as not adopted.
func (s *Simulator) Optimized(sc Scenario) (Trace, Plan) {
	return s.optimize(sc, s.Baseline(sc))
}

// optimize is Optimized against an already computed baseline trace.
func (s *Simulator) optimize(sc Scenario, baseline Trace) (Trace, Plan) {
	plan := s.Plan(sc)
	if math.IsInf(plan.Cost, 1) {
		return baseline, plan
	}

	tr := s.replay(sc, sc.Setpoint-plan.Deviations[0], func(h int) float64 {
		return sc.Setpoint - plan.Deviations[h+1]
	})
	if tr.TotalEnergy() <= baseline.TotalEnergy() {
		plan.Adopted = true
		return tr, plan
	}
	return baseline, plan
}

// SimulateOptimized runs the optimizer over the default day.
func SimulateOptimized(sc Scenario) Trace {
	tr, _ := NewDefault().Optimized(sc)
	return tr
}
