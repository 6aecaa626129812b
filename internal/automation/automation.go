package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs one scene, optionally overriding its timing, spring
// constants (by spring index) and adding kicks.
type ScenarioStep struct {
	Scene      string              `yaml:"scene"`
	Integrator string              `yaml:"integrator"`
	Duration   float64             `yaml:"duration"`
	Dt         float64             `yaml:"dt"`
	SpringK    map[int]float64     `yaml:"spring_k"`
	Kicks      []config.KickConfig `yaml:"kicks"`
	Metrics    []string            `yaml:"metrics"`
	SaveAs     string              `yaml:"save_as"`
}

// StepResult pairs a finished step with the scene it actually ran.
type StepResult struct {
	Step       ScenarioStep
	Scene      *config.Config
	Integrator string
	Result     *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// resolve applies a step's overrides to a copy of its scene.
func (step ScenarioStep) resolve(registry *experiment.Registry) (*config.Config, error) {
	cfg, err := registry.GetScene(step.Scene)
	if err != nil {
		return nil, err
	}
	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if step.Duration > 0 {
		cfg.Duration = step.Duration
	}
	for i, k := range step.SpringK {
		if i < 0 || i >= len(cfg.Springs) {
			return nil, fmt.Errorf("spring_k: spring %d out of range [0, %d)", i, len(cfg.Springs))
		}
		cfg.Springs[i].K = k
	}
	cfg.Kicks = append(cfg.Kicks, step.Kicks...)
	return cfg, nil
}

// RunScenario executes all steps in a scenario, in order.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.resolve(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		name := integratorOrDefault(step.Integrator)
		integ, err := registry.GetIntegrator(name)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		ms := registry.DefaultMetrics()
		if len(step.Metrics) > 0 {
			ms = ms[:0]
			for _, mn := range step.Metrics {
				m, err := registry.GetMetric(mn)
				if err != nil {
					return results, fmt.Errorf("step %d: %w", i+1, err)
				}
				ms = append(ms, m)
			}
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(integ, ms); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Scene: cfg, Integrator: name, Result: result})
	}

	return results, nil
}

// ParameterSweep varies the constant of one spring of a scene and watches
// one coordinate (Axis 0 for x, 1 for y) of one body.
type ParameterSweep struct {
	Scene      *config.Config
	Integrator string
	Spring     int
	KMin       float64
	KMax       float64
	NumSteps   int
	Body       string
	Axis       int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	K           float64
	Frequency   float64
	Amplitude   float64
	MaxStretch  float64
	EnergyDrift float64
	Stable      bool
}

func (s *ParameterSweep) values() []float64 {
	n := max(s.NumSteps, 1)
	ks := make([]float64, n)
	if n == 1 {
		ks[0] = s.KMin
		return ks
	}
	step := (s.KMax - s.KMin) / float64(n-1)
	for i := range ks {
		ks[i] = s.KMin + float64(i)*step
	}
	return ks
}

// target checks the sweep against its scene and returns the watched body.
func (s *ParameterSweep) target() (physics.BodyID, error) {
	if s.Scene == nil {
		return 0, fmt.Errorf("sweep: no scene")
	}
	if s.Spring < 0 || s.Spring >= len(s.Scene.Springs) {
		return 0, fmt.Errorf("sweep: spring %d out of range [0, %d)", s.Spring, len(s.Scene.Springs))
	}
	if s.Axis != 0 && s.Axis != 1 {
		return 0, fmt.Errorf("sweep: axis must be 0 or 1, got %d", s.Axis)
	}
	w, _, err := experiment.Build(s.Scene)
	if err != nil {
		return 0, err
	}
	b, err := w.Lookup(s.Body)
	if err != nil {
		return 0, err
	}
	return b.ID(), nil
}

// build makes the world for one spring constant.
func (s *ParameterSweep) build(registry *experiment.Registry, k float64) (*sim.World, sim.Config, error) {
	cfg := s.Scene.Clone()
	cfg.Springs[s.Spring].K = k
	w, simCfg, err := experiment.Build(cfg)
	if err != nil {
		return nil, sim.Config{}, err
	}
	integ, err := registry.GetIntegrator(integratorOrDefault(s.Integrator))
	if err != nil {
		return nil, sim.Config{}, err
	}
	w.SetIntegrator(integ)
	return w, simCfg, nil
}

// RunSweep runs one world per spring constant concurrently and reports the
// dominant frequency and amplitude of the watched coordinate.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	body, err := sweep.target()
	if err != nil {
		return nil, err
	}

	ks := sweep.values()
	sampleDt := make([]float64, len(ks))
	ensemble := sim.NewEnsemble(len(ks), func(i int) (*sim.World, sim.Config, error) {
		w, cfg, err := sweep.build(registry, ks[i])
		if err == nil {
			sampleDt[i] = cfg.Dt * float64(max(cfg.RecordEvery, 1))
		}
		return w, cfg, err
	}).WithMetrics(func() []sim.Metric {
		return []sim.Metric{metrics.NewMaxStretch()}
	})

	runs, err := ensemble.Run(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(ks))
	for i, res := range runs {
		series := analysis.Detrend(res.Series(body, sweep.Axis))
		results[i] = SweepResult{
			K:           ks[i],
			Frequency:   analysis.DominantFrequency(series, sampleDt[i]),
			Amplitude:   analysis.Summary(series).Amplitude(),
			MaxStretch:  res.Metrics["max_stretch"],
			EnergyDrift: res.EnergyDrift,
			Stable:      len(res.Errors) == 0,
		}
	}
	return results, nil
}

// SweepBifurcation records the peaks of the watched coordinate for each
// spring constant, after transient seconds, over record seconds.
func SweepBifurcation(sweep *ParameterSweep, registry *experiment.Registry, transient, record float64) ([]analysis.BifurcationPoint, error) {
	body, err := sweep.target()
	if err != nil {
		return nil, err
	}
	build := func(k float64) (*sim.World, error) {
		w, simCfg, err := sweep.build(registry, k)
		if err != nil {
			return nil, err
		}
		// every scheduled kick fires up front; they are what set a scene moving
		for _, kick := range simCfg.Kicks {
			if err := w.Kick(kick.Body, kick.Velocity); err != nil {
				return nil, err
			}
		}
		return w, nil
	}
	return analysis.BifurcationDiagram(build, body, sweep.Axis, sweep.KMin, sweep.KMax, max(sweep.NumSteps, 2), sweep.Scene.Dt, transient, record)
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Scene        *config.Config
	Integrator   string
	Perturbation float64
	NumTrials    int
	Seed         int64
	// Bound is how far a body may end from where it started and still count
	// as stable.
	Bound float64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID         int
	MaxDisplacement float64
	EnergyDrift     float64
	Stable          bool
}

// perturb jitters every mass position by up to ±amount on each axis.
func perturb(cfg *config.Config, rng *rand.Rand, amount float64) *config.Config {
	out := cfg.Clone()
	for i := range out.Masses {
		out.Masses[i].Position[0] += (rng.Float64() - 0.5) * 2 * amount
		out.Masses[i].Position[1] += (rng.Float64() - 0.5) * 2 * amount
	}
	return out
}

// RunMonteCarlo executes trials with randomly perturbed mass positions.
// Perturbations are drawn up front so a seed reproduces the whole batch
// even though trials run concurrently.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo: need at least one trial")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Scene.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	scenes := make([]*config.Config, cfg.NumTrials)
	for i := range scenes {
		scenes[i] = perturb(cfg.Scene, rng, cfg.Perturbation)
	}

	ensemble := sim.NewEnsemble(cfg.NumTrials, func(i int) (*sim.World, sim.Config, error) {
		w, simCfg, err := experiment.Build(scenes[i])
		if err != nil {
			return nil, sim.Config{}, fmt.Errorf("trial %d: %w", i, err)
		}
		integ, err := registry.GetIntegrator(integratorOrDefault(cfg.Integrator))
		if err != nil {
			return nil, sim.Config{}, err
		}
		w.SetIntegrator(integ)
		return w, simCfg, nil
	})

	runs, err := ensemble.Run(ctx)
	if err != nil {
		return nil, err
	}

	bound := cfg.Bound
	if bound <= 0 {
		bound = 1e6
	}
	results := make([]MonteCarloResult, len(runs))
	for i, res := range runs {
		disp := maxDisplacement(res)
		results[i] = MonteCarloResult{
			TrialID:         i,
			MaxDisplacement: disp,
			EnergyDrift:     res.EnergyDrift,
			Stable:          len(res.Errors) == 0 && disp <= bound,
		}
	}
	return results, nil
}

// maxDisplacement is the largest distance any body ends from where it
// started.
func maxDisplacement(res *sim.Result) float64 {
	if len(res.Frames) == 0 {
		return 0
	}
	first, last := res.Frames[0], res.Frames[len(res.Frames)-1]
	d := 0.0
	for i := range first.Positions {
		dx := last.Positions[i].X - first.Positions[i].X
		dy := last.Positions[i].Y - first.Positions[i].Y
		d = math.Max(d, math.Hypot(dx, dy))
	}
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

func integratorOrDefault(name string) string {
	if name == "" {
		return experiment.DefaultIntegrator
	}
	return name
}
