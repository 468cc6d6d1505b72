package main

import (
	"encoding/csv"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/Agrid-Dev/coolsim/internal/report"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// WriteDailyCSV writes one row per hour comparing both policies.
func WriteDailyCSV(filename string, sc simulator.Scenario, tMin, tMax float64) error {
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid scenario: %v", err)
	}
	sim := simulator.New(thermal.ExteriorProfile(1, tMin, tMax))
	c := sim.Compare(sc)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Hour", "Exterior", "BaselineInterior", "BaselineKWh", "OptimizedInterior", "OptimizedKWh", "TargetDeviation", "Action"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, h := range report.Hours(c) {
		if err := writer.Write([]string{
			fmt.Sprintf("%d", h.Hour),
			fmt.Sprintf("%.1f", h.Exterior),
			fmt.Sprintf("%.1f", h.BaselineInterior),
			fmt.Sprintf("%.4f", h.BaselineKWh),
			fmt.Sprintf("%.1f", h.OptimizedInterior),
			fmt.Sprintf("%.4f", h.OptimizedKWh),
			fmt.Sprintf("%.1f", h.TargetDeviation),
			h.Action,
		}); err != nil {
			return fmt.Errorf("failed to write CSV record: %v", err)
		}
	}

	fmt.Printf("baseline %.3f kWh, optimized %.3f kWh, savings %.2f %%\n",
		c.Baseline.TotalKWh(), c.Optimized.TotalKWh(), c.SavingsPercent())
	return nil
}

func main() {
	sc := simulator.DefaultScenario()
	var (
		out        string
		insulation string
		unit       string
		tMin, tMax float64
	)
	flag.StringVarP(&out, "out", "o", "coolsim.csv", "output file")
	flag.Float64Var(&sc.Surface, "surface", sc.Surface, "floor surface (m²)")
	flag.Float64Var(&sc.Height, "height", sc.Height, "ceiling height (m)")
	flag.Float64Var(&sc.Setpoint, "setpoint", sc.Setpoint, "temperature setpoint (°C)")
	flag.StringVar(&insulation, "insulation", sc.Insulation.String(), "poor, medium or good")
	flag.StringVar(&unit, "unit-type", sc.Unit.String(), "standard, older or high_efficiency")
	flag.Float64Var(&tMin, "t-min", thermal.DefaultMinTemperature, "exterior minimum (°C)")
	flag.Float64Var(&tMax, "t-max", thermal.DefaultMaxTemperature, "exterior maximum (°C)")
	flag.Parse()

	var err error
	if sc.Insulation, err = thermal.ParseInsulation(insulation); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if sc.Unit, err = thermal.ParseUnitType(unit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := WriteDailyCSV(out, sc, tMin, tMax); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
