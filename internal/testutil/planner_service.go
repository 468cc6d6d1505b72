package testutil

import (
	"time"

	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/ports"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// FakePlannerService is a reusable fake implementing ports.PlannerService.
// Setters only edit the held scenario; the comparison is not recomputed.
type FakePlannerService struct {
	S planner.Snapshot

	SetSurfaceCalled bool
	SetSurfaceArg    float64
	SetSurfaceErr    error

	SetHeightCalled bool
	SetHeightArg    float64
	SetHeightErr    error

	SetSetpointCalled bool
	SetSetpointArg    float64
	SetSetpointErr    error

	SetInsulationCalled bool
	SetInsulationArg    thermal.Insulation
	SetInsulationErr    error

	SetUnitTypeCalled bool
	SetUnitTypeArg    thermal.UnitType
	SetUnitTypeErr    error

	UpdateCalled bool
	UpdateErr    error

	SimulateCalled bool
	SimulateArg    simulator.Scenario
	SimulateErr    error
}

var _ ports.PlannerService = (*FakePlannerService)(nil)

func NewFakePlannerService() *FakePlannerService {
	return &FakePlannerService{
		S: planner.Snapshot{
			RunID:      "run-1",
			ComputedAt: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
			Elapsed:    3 * time.Millisecond,
			Comparison: simulator.Compare(simulator.DefaultScenario()),
		},
	}
}

func (f *FakePlannerService) Get() planner.Snapshot { return f.S }

func (f *FakePlannerService) SetSurface(v float64) error {
	f.SetSurfaceCalled = true
	f.SetSurfaceArg = v
	if f.SetSurfaceErr != nil {
		return f.SetSurfaceErr
	}
	f.S.Comparison.Scenario.Surface = v
	return nil
}

func (f *FakePlannerService) SetHeight(v float64) error {
	f.SetHeightCalled = true
	f.SetHeightArg = v
	if f.SetHeightErr != nil {
		return f.SetHeightErr
	}
	f.S.Comparison.Scenario.Height = v
	return nil
}

func (f *FakePlannerService) SetSetpoint(v float64) error {
	f.SetSetpointCalled = true
	f.SetSetpointArg = v
	if f.SetSetpointErr != nil {
		return f.SetSetpointErr
	}
	f.S.Comparison.Scenario.Setpoint = v
	return nil
}

func (f *FakePlannerService) SetInsulation(i thermal.Insulation) error {
	f.SetInsulationCalled = true
	f.SetInsulationArg = i
	if f.SetInsulationErr != nil {
		return f.SetInsulationErr
	}
	f.S.Comparison.Scenario.Insulation = i
	return nil
}

func (f *FakePlannerService) SetUnitType(u thermal.UnitType) error {
	f.SetUnitTypeCalled = true
	f.SetUnitTypeArg = u
	if f.SetUnitTypeErr != nil {
		return f.SetUnitTypeErr
	}
	f.S.Comparison.Scenario.Unit = u
	return nil
}

// Update applies fn to a copy and keeps it only when UpdateErr is nil and
// the result validates.
func (f *FakePlannerService) Update(fn func(*simulator.Scenario)) error {
	f.UpdateCalled = true
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	sc := f.S.Scenario()
	fn(&sc)
	if err := sc.Validate(); err != nil {
		return err
	}
	f.S.Comparison.Scenario = sc
	return nil
}

func (f *FakePlannerService) Simulate(sc simulator.Scenario) (simulator.Comparison, error) {
	f.SimulateCalled = true
	f.SimulateArg = sc
	if f.SimulateErr != nil {
		return simulator.Comparison{}, f.SimulateErr
	}
	return simulator.Compare(sc), nil
}
