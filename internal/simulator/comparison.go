package simulator

// Comparison holds both policies run over the same day.
type Comparison struct {
	Scenario  Scenario
	Baseline  Trace
	Optimized Trace
	Plan      Plan
}

// Compare runs the baseline once and the optimizer against it. When the plan
// is not adopted both traces share the same backing arrays.
func (s *Simulator) Compare(sc Scenario) Comparison {
	baseline := s.Baseline(sc)
	opt, plan := s.optimize(sc, baseline)
	return Comparison{
		Scenario:  sc,
		Baseline:  baseline,
		Optimized: opt,
		Plan:      plan,
	}
}

// Compare runs both policies over the default day.
func Compare(sc Scenario) Comparison {
	return NewDefault().Compare(sc)
}

// SavedEnergy is the baseline total minus the optimized total, J.
func (c Comparison) SavedEnergy() float64 {
	return c.Baseline.TotalEnergy() - c.Optimized.TotalEnergy()
}

// SavingsPercent is zero when the baseline draws no energy at all.
func (c Comparison) SavingsPercent() float64 {
	base := c.Baseline.TotalEnergy()
	if base == 0 {
		return 0
	}
	return c.SavedEnergy() / base * 100
}
