package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// Build turns a scene into a world and its run config. Bodies are added
// masses first, then anchors, then walls, so IDs follow config.Names.
func Build(cfg *config.Config) (*sim.World, sim.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, sim.Config{}, err
	}

	w := sim.NewWorld()
	w.Workers = cfg.Workers

	for _, m := range cfg.Masses {
		b, err := w.AddMass(m.Mass, vec(m.Position))
		if err != nil {
			return nil, sim.Config{}, fmt.Errorf("mass %q: %w", m.Name, err)
		}
		if err := w.Name(b.ID(), m.Name); err != nil {
			return nil, sim.Config{}, err
		}
	}
	for _, a := range cfg.Anchors {
		b := w.AddAnchor(vec(a.Position))
		if err := w.Name(b.ID(), a.Name); err != nil {
			return nil, sim.Config{}, err
		}
	}
	for _, wc := range cfg.Walls {
		b := w.AddWall(wc.HeightOrDefault(), vec(wc.Position))
		if err := w.Name(b.ID(), wc.Name); err != nil {
			return nil, sim.Config{}, err
		}
	}

	for i, s := range cfg.Springs {
		start, err := w.Lookup(s.Start)
		if err != nil {
			return nil, sim.Config{}, err
		}
		end, err := w.Lookup(s.End)
		if err != nil {
			return nil, sim.Config{}, err
		}
		if _, err := w.AddSpring(s.K, start.ID(), end.ID()); err != nil {
			return nil, sim.Config{}, fmt.Errorf("spring %d (%s-%s): %w", i, s.Start, s.End, err)
		}
	}

	simCfg := sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Seed:          cfg.Seed,
		RecordEvery:   cfg.RecordEvery,
		ValidateState: true,
		Kicks:         make([]sim.Kick, 0, len(cfg.Kicks)),
	}
	for _, k := range cfg.Kicks {
		b, err := w.Lookup(k.Body)
		if err != nil {
			return nil, sim.Config{}, err
		}
		simCfg.Kicks = append(simCfg.Kicks, sim.Kick{Body: b.ID(), At: k.At, Velocity: vec(k.Velocity)})
	}

	return w, simCfg, nil
}

func vec(v config.Vec2) r3.Vec { return r3.Vec{X: v[0], Y: v[1]} }

type Experiment struct {
	cfg       *config.Config
	world     *sim.World
	simCfg    sim.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the world and wires the integrator and metrics in.
func (e *Experiment) Setup(integrator physics.Integrator, metrics []sim.Metric) error {
	w, simCfg, err := Build(e.cfg)
	if err != nil {
		return err
	}
	if integrator != nil {
		w.SetIntegrator(integrator)
	}

	e.world = w
	e.simCfg = simCfg
	e.simulator = sim.New()
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.world, e.simCfg)
}

// World returns the built world, e.g. to attach drawables before Run.
func (e *Experiment) World() *sim.World { return e.world }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
