// Package report turns planner snapshots into the wire format shared by the
// HTTP, MQTT, WebSocket and Kafka surfaces.
package report

import (
	"fmt"
	"time"

	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

type Report struct {
	DeviceID   string    `json:"device_id" yaml:"device_id"`
	RunID      string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	ComputedAt time.Time `json:"computed_at,omitzero" yaml:"computed_at,omitempty"`
	Scenario   Scenario  `json:"scenario" yaml:"scenario"`
	Summary    Summary   `json:"summary" yaml:"summary"`
	Hours      []Hour    `json:"hours,omitempty" yaml:"hours,omitempty"`
}

type Scenario struct {
	Surface    float64 `json:"surface" yaml:"surface"`
	Height     float64 `json:"height" yaml:"height"`
	Insulation string  `json:"insulation" yaml:"insulation"`
	Setpoint   float64 `json:"temperature_setpoint" yaml:"temperature_setpoint"`
	UnitType   string  `json:"unit_type" yaml:"unit_type"`
}

// Summary is the pre-aggregated view handed to the commentary client.
type Summary struct {
	Setpoint       float64 `json:"temperature_setpoint" yaml:"temperature_setpoint"`
	BaselineKWh    float64 `json:"baseline_kwh" yaml:"baseline_kwh"`
	OptimizedKWh   float64 `json:"optimized_kwh" yaml:"optimized_kwh"`
	SavingsPercent float64 `json:"savings_percent" yaml:"savings_percent"`
	BaselineMin    float64 `json:"baseline_interior_min" yaml:"baseline_interior_min"`
	BaselineMax    float64 `json:"baseline_interior_max" yaml:"baseline_interior_max"`
	OptimizedMin   float64 `json:"optimized_interior_min" yaml:"optimized_interior_min"`
	OptimizedMax   float64 `json:"optimized_interior_max" yaml:"optimized_interior_max"`
	PlanAdopted    bool    `json:"plan_adopted" yaml:"plan_adopted"`
}

type Hour struct {
	Hour              int     `json:"hour" yaml:"hour"`
	Exterior          float64 `json:"exterior" yaml:"exterior"`
	BaselineInterior  float64 `json:"baseline_interior" yaml:"baseline_interior"`
	BaselineKWh       float64 `json:"baseline_kwh" yaml:"baseline_kwh"`
	OptimizedInterior float64 `json:"optimized_interior" yaml:"optimized_interior"`
	OptimizedKWh      float64 `json:"optimized_kwh" yaml:"optimized_kwh"`
	TargetDeviation   float64 `json:"target_deviation" yaml:"target_deviation"`
	Action            string  `json:"action" yaml:"action"`
}

// New builds a report of the snapshot. Hourly rows are included only when
// withHours is set.
func New(deviceID string, s planner.Snapshot, withHours bool) Report {
	r := FromComparison(s.Comparison, withHours)
	r.DeviceID = deviceID
	r.RunID = s.RunID
	r.ComputedAt = s.ComputedAt
	return r
}

func FromComparison(c simulator.Comparison, withHours bool) Report {
	r := Report{
		Scenario: FromScenario(c.Scenario),
		Summary:  Summarize(c),
	}
	if withHours {
		r.Hours = Hours(c)
	}
	return r
}

func FromScenario(sc simulator.Scenario) Scenario {
	return Scenario{
		Surface:    sc.Surface,
		Height:     sc.Height,
		Insulation: sc.Insulation.String(),
		Setpoint:   sc.Setpoint,
		UnitType:   sc.Unit.String(),
	}
}

// ToScenario parses the enums; ranges are left to Scenario.Validate.
func (s Scenario) ToScenario() (simulator.Scenario, error) {
	ins, err := thermal.ParseInsulation(s.Insulation)
	if err != nil {
		return simulator.Scenario{}, err
	}
	unit, err := thermal.ParseUnitType(s.UnitType)
	if err != nil {
		return simulator.Scenario{}, err
	}
	return simulator.Scenario{
		Surface:    s.Surface,
		Height:     s.Height,
		Insulation: ins,
		Setpoint:   s.Setpoint,
		Unit:       unit,
	}, nil
}

func Summarize(c simulator.Comparison) Summary {
	return Summary{
		Setpoint:       c.Scenario.Setpoint,
		BaselineKWh:    c.Baseline.TotalKWh(),
		OptimizedKWh:   c.Optimized.TotalKWh(),
		SavingsPercent: c.SavingsPercent(),
		BaselineMin:    c.Baseline.MinInterior(),
		BaselineMax:    c.Baseline.MaxInterior(),
		OptimizedMin:   c.Optimized.MinInterior(),
		OptimizedMax:   c.Optimized.MaxInterior(),
		PlanAdopted:    c.Plan.Adopted,
	}
}

func Hours(c simulator.Comparison) []Hour {
	base, opt := c.Baseline, c.Optimized
	baseKWh, optKWh := base.EnergyKWh(), opt.EnergyKWh()

	out := make([]Hour, base.Hours())
	for h := range out {
		row := Hour{
			Hour:              h,
			Exterior:          base.Exterior[h],
			BaselineInterior:  base.Interior[h],
			BaselineKWh:       baseKWh[h],
			OptimizedInterior: opt.Interior[h],
			OptimizedKWh:      optKWh[h],
			Action:            simulator.ActionClamp.String(),
		}
		// the lattice plan only drives the trace when it was adopted
		if c.Plan.Adopted && h+1 < len(c.Plan.Deviations) {
			row.TargetDeviation = c.Plan.Deviations[h+1]
			row.Action = c.Plan.Actions[h].String()
		}
		out[h] = row
	}
	return out
}

// Text renders the summary as the one-paragraph digest sent to the
// commentary model.
func (s Summary) Text() string {
	return fmt.Sprintf(
		"Setpoint: %.1f °C. 24 h baseline consumption: %.2f kWh. "+
			"24 h optimized consumption: %.2f kWh. Savings: %.1f %%. "+
			"Baseline interior min/max: %.1f/%.1f °C. "+
			"Optimized interior min/max: %.1f/%.1f °C.",
		s.Setpoint, s.BaselineKWh, s.OptimizedKWh, s.SavingsPercent,
		s.BaselineMin, s.BaselineMax, s.OptimizedMin, s.OptimizedMax,
	)
}
