package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

// DefaultIntegrator is the kernel's own update rule.
const DefaultIntegrator = "semi-implicit"

type Registry struct {
	integrators map[string]func() physics.Integrator
	metrics     map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() physics.Integrator),
		metrics:     make(map[string]func() sim.Metric),
	}

	r.integrators["semi-implicit"] = func() physics.Integrator { return physics.NewSemiImplicitEuler() }
	r.integrators["euler"] = func() physics.Integrator { return physics.NewExplicitEuler() }

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["max_stretch"] = func() sim.Metric { return metrics.NewMaxStretch() }
	r.metrics["tension"] = func() sim.Metric { return metrics.NewTension() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(10.0) }

	return r
}

// GetScene resolves a preset name or, failing that, a scene file path.
func (r *Registry) GetScene(name string) (*config.Config, error) {
	if cfg := config.GetPreset(name); cfg != nil {
		return cfg, nil
	}
	cfg, err := config.Load(name)
	if err != nil {
		return nil, fmt.Errorf("unknown scene %q: %w", name, err)
	}
	return cfg, nil
}

func (r *Registry) GetIntegrator(name string) (physics.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListMetrics() []string     { return sortedKeys(r.metrics) }

// DefaultMetrics returns fresh instances of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
