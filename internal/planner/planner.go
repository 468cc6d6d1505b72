package planner

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// Snapshot is the current scenario together with its latest comparison.
type Snapshot struct {
	RunID      string
	ComputedAt time.Time
	Elapsed    time.Duration
	Comparison simulator.Comparison
}

func (s Snapshot) Scenario() simulator.Scenario { return s.Comparison.Scenario }

// Planner holds one room scenario and recomputes both policies whenever a
// parameter changes.
type Planner struct {
	mu  sync.RWMutex
	s   Snapshot
	seq uint64
	sim *simulator.Simulator
	log *zap.Logger

	obsMu     sync.RWMutex
	observers []func(Snapshot)

	// notifyMu orders deliveries; notified is the last sequence delivered.
	notifyMu sync.Mutex
	notified uint64

	now   func() time.Time
	newID func() string
}

func New(initial simulator.Scenario, sim *simulator.Simulator, log *zap.Logger) (*Planner, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Planner{
		sim:   sim,
		log:   log.With(zap.String("component", "planner")),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	p.s = p.compute(initial)
	return p, nil
}

func (p *Planner) Get() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.s
}

// Subscribe registers fn to be called with every new snapshot. Observers run
// synchronously on the goroutine that changed the scenario, one snapshot at a
// time and in commit order. A snapshot superseded before its delivery starts
// is skipped.
func (p *Planner) Subscribe(fn func(Snapshot)) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	p.observers = append(p.observers, fn)
}

func (p *Planner) SetSurface(v float64) error {
	return p.update(func(sc *simulator.Scenario) { sc.Surface = v })
}

func (p *Planner) SetHeight(v float64) error {
	return p.update(func(sc *simulator.Scenario) { sc.Height = v })
}

func (p *Planner) SetSetpoint(v float64) error {
	return p.update(func(sc *simulator.Scenario) { sc.Setpoint = v })
}

func (p *Planner) SetInsulation(i thermal.Insulation) error {
	return p.update(func(sc *simulator.Scenario) { sc.Insulation = i })
}

func (p *Planner) SetUnitType(u thermal.UnitType) error {
	return p.update(func(sc *simulator.Scenario) { sc.Unit = u })
}

// Update applies fn to a copy of the held scenario and commits the result
// only if it validates. Several fields change under one recompute.
func (p *Planner) Update(fn func(*simulator.Scenario)) error {
	return p.update(fn)
}

// SetScenario replaces the whole scenario at once.
func (p *Planner) SetScenario(sc simulator.Scenario) error {
	return p.update(func(cur *simulator.Scenario) { *cur = sc })
}

// Simulate runs a one-off comparison without touching the held scenario.
func (p *Planner) Simulate(sc simulator.Scenario) (simulator.Comparison, error) {
	if err := sc.Validate(); err != nil {
		return simulator.Comparison{}, err
	}
	return p.sim.Compare(sc), nil
}

func (p *Planner) update(apply func(*simulator.Scenario)) error {
	p.mu.Lock()
	sc := p.s.Scenario()
	apply(&sc)
	if err := sc.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.s = p.compute(sc)
	p.seq++
	snap, seq := p.s, p.seq
	p.mu.Unlock()

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if seq > p.notified {
		p.notified = seq
		p.notify(snap)
	}
	return nil
}

func (p *Planner) compute(sc simulator.Scenario) Snapshot {
	start := p.now()
	c := p.sim.Compare(sc)
	snap := Snapshot{
		RunID:      p.newID(),
		ComputedAt: start,
		Elapsed:    p.now().Sub(start),
		Comparison: c,
	}
	p.log.Debug("scenario computed",
		zap.String("run_id", snap.RunID),
		zap.Float64("setpoint", sc.Setpoint),
		zap.Float64("baseline_kwh", c.Baseline.TotalKWh()),
		zap.Float64("optimized_kwh", c.Optimized.TotalKWh()),
		zap.Bool("plan_adopted", c.Plan.Adopted),
	)
	return snap
}

func (p *Planner) notify(s Snapshot) {
	p.obsMu.RLock()
	defer p.obsMu.RUnlock()
	for _, fn := range p.observers {
		fn(s)
	}
}
