package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/sim"
)

// Objective scores a finished run; lower is better.
type Objective func(result *sim.Result) float64

// GridSearch tries every combination of candidate constants for a set of
// springs, identified by their index in the scene.
type GridSearch struct {
	springs []int
	ranges  [][]float64
}

func NewGridSearch(springs []int, ranges [][]float64) *GridSearch {
	return &GridSearch{springs: springs, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search runs scene once per grid point and returns the spring constants
// with the lowest objective. Runs that fail or score NaN are skipped; if
// none succeed the last error is returned.
func (g *GridSearch) Search(
	ctx context.Context,
	scene *config.Config,
	integrator string,
	registry *experiment.Registry,
	objective Objective,
) (map[int]float64, float64, error) {
	if len(g.springs) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid search: %d springs but %d ranges", len(g.springs), len(g.ranges))
	}
	for _, s := range g.springs {
		if s < 0 || s >= len(scene.Springs) {
			return nil, 0, fmt.Errorf("grid search: spring %d out of range [0, %d)", s, len(scene.Springs))
		}
	}

	best := math.Inf(1)
	var bestParams map[int]float64
	var lastErr error

	run := func(current map[int]float64) error {
		cfg := scene.Clone()
		for s, k := range current {
			cfg.Springs[s].K = k
		}

		integ, err := registry.GetIntegrator(integrator)
		if err != nil {
			return err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(integ, nil); err != nil {
			lastErr = err
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			lastErr = err
			return nil
		}
		// a diverged run stops early; its last frame says nothing
		if len(result.Errors) > 0 {
			lastErr = result.Errors[0]
			return nil
		}

		val := objective(result)
		if math.IsNaN(val) {
			lastErr = fmt.Errorf("grid search: objective is NaN at %v", current)
			return nil
		}
		if val < best {
			best = val
			bestParams = make(map[int]float64, len(current))
			for s, k := range current {
				bestParams[s] = k
			}
		}
		return nil
	}

	if err := g.searchRecursive(0, make(map[int]float64), run); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("grid search: no grid point scored")
		}
		return nil, 0, lastErr
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[int]float64, run func(map[int]float64) error) error {
	if depth == len(g.springs) {
		return run(current)
	}

	spring := g.springs[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[int]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[spring] = val

		if err := g.searchRecursive(depth+1, next, run); err != nil {
			return err
		}
	}
	return nil
}
