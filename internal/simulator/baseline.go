package simulator

import (
	"time"

	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

const Step = time.Hour

// Simulator runs control policies over a fixed exterior profile. It holds no
// per-run state and is safe for concurrent use.
type Simulator struct {
	exterior []float64
}

// New returns a simulator over the given hourly exterior temperatures. The
// slice is copied.
func New(exterior []float64) *Simulator {
	return &Simulator{exterior: append([]float64(nil), exterior...)}
}

// NewDefault simulates a single day of the default exterior profile.
func NewDefault() *Simulator {
	return New(thermal.DefaultExteriorProfile())
}

func (s *Simulator) Exterior() []float64 {
	return append([]float64(nil), s.exterior...)
}

func (s *Simulator) Hours() int { return len(s.exterior) }

// Baseline never lets the room end an hour above the setpoint and never cools
// below it.
func (s *Simulator) Baseline(sc Scenario) Trace {
	return s.replay(sc, sc.Setpoint, func(int) float64 { return sc.Setpoint })
}

// replay advances the room hour by hour from start. Whenever free drift would
// end the hour above target(h), the unit removes exactly the excess heat.
func (s *Simulator) replay(sc Scenario, start float64, target func(hour int) float64) Trace {
	params := sc.Params()
	n := len(s.exterior)
	tr := Trace{
		Exterior: s.Exterior(),
		Interior: make([]float64, n),
		Energy:   make([]float64, n),
	}

	tInt := start
	for h, tExt := range s.exterior {
		noClim := params.Relax(tInt, tExt, Step)
		want := target(h)
		if noClim > want {
			tInt = want
			tr.Energy[h] = params.HeatToRemove(noClim, want) / thermal.COP(sc.Unit, tExt)
		} else {
			tInt = noClim
		}
		tr.Interior[h] = thermal.Round1(tInt)
	}
	return tr
}

// SimulateBaseline runs the baseline policy over the default day.
func SimulateBaseline(sc Scenario) Trace {
	return NewDefault().Baseline(sc)
}
