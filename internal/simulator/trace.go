package simulator

import "math"

const JoulesPerKWh = 3.6e6

// Trace is the hourly output of one control policy. Interior holds end-of-hour
// temperatures rounded to one decimal, Energy the electrical joules drawn
// during each hour.
type Trace struct {
	Exterior []float64
	Interior []float64
	Energy   []float64
}

func (t Trace) Hours() int { return len(t.Interior) }

func (t Trace) TotalEnergy() float64 {
	var sum float64
	for _, e := range t.Energy {
		sum += e
	}
	return sum
}

func (t Trace) TotalKWh() float64 {
	return t.TotalEnergy() / JoulesPerKWh
}

// EnergyKWh returns a converted copy of the hourly energies.
func (t Trace) EnergyKWh() []float64 {
	out := make([]float64, len(t.Energy))
	for i, e := range t.Energy {
		out[i] = e / JoulesPerKWh
	}
	return out
}

// MinInterior is zero for an empty trace.
func (t Trace) MinInterior() float64 {
	if len(t.Interior) == 0 {
		return 0
	}
	m := t.Interior[0]
	for _, v := range t.Interior[1:] {
		m = math.Min(m, v)
	}
	return m
}

func (t Trace) MaxInterior() float64 {
	if len(t.Interior) == 0 {
		return 0
	}
	m := t.Interior[0]
	for _, v := range t.Interior[1:] {
		m = math.Max(m, v)
	}
	return m
}
