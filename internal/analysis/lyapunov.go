package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// WorldFunc builds a fresh copy of a scene.
type WorldFunc func() (*sim.World, error)

// Divergence estimates how fast two copies of a scene separate when one of
// them starts with an extra velocity of perturbation along x on body.
// The result is the slope of ln(separation) against time, so a positive
// value means nearby trajectories diverge exponentially.
//
// Worlds cannot be reset to an arbitrary state, so unlike a classic
// Lyapunov estimate the separation is never renormalized; keep duration
// short for strongly unstable scenes.
func Divergence(build WorldFunc, body physics.BodyID, perturbation, dt, duration float64) (float64, error) {
	if perturbation == 0 || dt <= 0 || duration <= 0 {
		return 0, fmt.Errorf("divergence: perturbation, dt and duration must be non-zero and positive")
	}

	ref, err := build()
	if err != nil {
		return 0, err
	}
	pert, err := build()
	if err != nil {
		return 0, err
	}
	if err := pert.Kick(body, r3.Vec{X: perturbation}); err != nil {
		return 0, err
	}

	steps := int(duration/dt + 1e-9)
	ts := make([]float64, 0, steps)
	logs := make([]float64, 0, steps)

	for i := 0; i < steps; i++ {
		if err := ref.Step(dt); err != nil {
			return 0, err
		}
		if err := pert.Step(dt); err != nil {
			return 0, err
		}

		sep := separation(ref, pert)
		if sep > 0 && !math.IsInf(sep, 0) {
			ts = append(ts, ref.Time())
			logs = append(logs, math.Log(sep))
		}
	}

	if len(ts) < 2 {
		return 0, nil
	}
	_, slope := stat.LinearRegression(ts, logs, nil, false)
	return slope, nil
}

// separation is the phase-space distance between matching bodies.
func separation(a, b *sim.World) float64 {
	ab, bb := a.Bodies(), b.Bodies()
	sum := 0.0
	for i := range ab {
		if i >= len(bb) {
			break
		}
		sum += r3.Norm2(r3.Sub(ab[i].Position(), bb[i].Position()))
		sum += r3.Norm2(r3.Sub(ab[i].Velocity(), bb[i].Velocity()))
	}
	return math.Sqrt(sum)
}
