package thermal

import (
	"math"
	"time"
)

const (
	airDensity      = 1.2    // kg/m³
	airHeatCapacity = 1005.0 // J/(kg·K)
	// massFactor stands in for furniture and walls on top of the room air.
	massFactor = 5.0
)

// Params are the lumped thermal parameters of a room.
type Params struct {
	UA float64 // heat-loss coefficient, W/K
	C  float64 // effective thermal capacitance, J/K
}

// Parameters derives the lumped parameters from the floor surface (m²), the
// ceiling height (m) and the insulation grade. The envelope is approximated by
// the floor surface.
func Parameters(surface, height float64, insulation Insulation) Params {
	volume := surface * height
	return Params{
		UA: insulation.Transmittance() * surface,
		C:  massFactor * (airDensity * volume * airHeatCapacity),
	}
}

// Decay is the fraction of the indoor/outdoor gap left after dt, exp(-dt/RC).
// A zero heat-loss coefficient means infinite resistance: nothing decays.
func (p Params) Decay(dt time.Duration) float64 {
	if p.UA <= 0 || p.C <= 0 {
		return 1
	}
	r := 1.0 / p.UA
	return math.Exp(-dt.Seconds() / (r * p.C))
}

// Relax returns the indoor temperature after dt with the unit off.
func (p Params) Relax(tInt, tExt float64, dt time.Duration) float64 {
	if p.UA <= 0 {
		return tInt
	}
	return tExt + (tInt-tExt)*p.Decay(dt)
}

// HeatToRemove is the heat in joules that must be extracted to take the room
// from "from" down to "to". It is never negative.
func (p Params) HeatToRemove(from, to float64) float64 {
	if from <= to {
		return 0
	}
	return (from - to) * p.C
}
