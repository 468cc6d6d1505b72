package simulator

import (
	"fmt"

	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// Input domains accepted by the service layer. The simulation functions
// themselves never check them.
const (
	MinSurface  = 5.0
	MaxSurface  = 500.0
	MinHeight   = 2.0
	MaxHeight   = 5.0
	MinSetpoint = 16.0
	MaxSetpoint = 30.0
)

// Scenario describes the room and the unit being simulated.
type Scenario struct {
	Surface    float64 // m²
	Height     float64 // m
	Insulation thermal.Insulation
	Setpoint   float64 // °C
	Unit       thermal.UnitType
}

func DefaultScenario() Scenario {
	return Scenario{
		Surface:    20,
		Height:     2.5,
		Insulation: thermal.InsulationMedium,
		Setpoint:   24,
		Unit:       thermal.UnitStandard,
	}
}

func (s Scenario) Validate() error {
	if s.Surface < MinSurface || s.Surface > MaxSurface {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrSurfaceOutOfRange, s.Surface, MinSurface, MaxSurface)
	}
	if s.Height < MinHeight || s.Height > MaxHeight {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrHeightOutOfRange, s.Height, MinHeight, MaxHeight)
	}
	if s.Setpoint < MinSetpoint || s.Setpoint > MaxSetpoint {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrSetpointOutOfRange, s.Setpoint, MinSetpoint, MaxSetpoint)
	}
	if !s.Insulation.Valid() {
		return ErrInvalidInsulation
	}
	if !s.Unit.Valid() {
		return ErrInvalidUnitType
	}
	return nil
}

func (s Scenario) Params() thermal.Params {
	return thermal.Parameters(s.Surface, s.Height, s.Insulation)
}

// ComfortFloor is the coldest interior temperature the optimizer may target.
func (s Scenario) ComfortFloor() float64 {
	return s.Setpoint - ComfortBand
}
