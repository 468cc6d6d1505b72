package ports

import (
	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// PlannerService is the control-plane port used by controllers (HTTP/MQTT/etc).
type PlannerService interface {
	Get() planner.Snapshot
	SetSurface(float64) error
	SetHeight(float64) error
	SetSetpoint(float64) error
	SetInsulation(thermal.Insulation) error
	SetUnitType(thermal.UnitType) error
	Update(func(*simulator.Scenario)) error
	Simulate(simulator.Scenario) (simulator.Comparison, error)
}
