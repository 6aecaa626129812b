package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/sim"
)

// MaxStretch is the largest |stretch ratio - 1| seen on any spring.
type MaxStretch struct {
	name string
	max  float64
}

func NewMaxStretch() *MaxStretch {
	return &MaxStretch{name: "max_stretch"}
}

func (m *MaxStretch) Name() string { return m.name }

func (m *MaxStretch) Observe(w *sim.World) {
	for _, s := range w.Springs() {
		m.max = math.Max(m.max, math.Abs(s.StretchRatio()-1))
	}
}

func (m *MaxStretch) Value() float64 { return m.max }
func (m *MaxStretch) Reset()         { m.max = 0 }

// Tension is the mean absolute Hooke force summed over all springs.
type Tension struct {
	name    string
	sum     float64
	samples int
}

func NewTension() *Tension {
	return &Tension{name: "tension"}
}

func (t *Tension) Name() string {
	return t.name
}

func (t *Tension) Observe(w *sim.World) {
	for _, s := range w.Springs() {
		t.sum += math.Abs(s.K() * (s.RestLength() - s.Length()))
	}
	t.samples++
}

func (t *Tension) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.sum / float64(t.samples)
}

func (t *Tension) Reset() {
	t.sum = 0
	t.samples = 0
}
