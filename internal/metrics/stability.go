package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stability is the fraction of observed ticks in which every body stayed
// within threshold of where it was first seen and held a finite position.
type Stability struct {
	name       string
	threshold  float64
	origin     []r3.Vec
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *sim.World) {
	bodies := w.Bodies()
	if s.origin == nil {
		s.origin = make([]r3.Vec, len(bodies))
		for i, b := range bodies {
			s.origin[i] = b.Position()
		}
	}

	s.samples++
	for i, b := range bodies {
		if i >= len(s.origin) {
			break
		}
		d := r3.Norm(r3.Sub(b.Position(), s.origin[i]))
		if math.IsNaN(d) || d > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.origin = nil
	s.violations = 0
	s.samples = 0
}
