package sim

import (
	"github.com/san-kum/springsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Metric accumulates a scalar over the ticks of a run.
type Metric interface {
	Name() string
	Observe(w *World)
	Value() float64
	Reset()
}

// Observer is notified before every tick.
type Observer interface {
	OnStep(w *World)
}

// Kick is an impulse applied once, before the first tick starting at or
// after At.
type Kick struct {
	Body     physics.BodyID
	At       float64
	Velocity r3.Vec
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	RecordEvery   int
	ValidateState bool
	Kicks         []Kick
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Frame is the recorded view of a world after a tick.
type Frame struct {
	Time      float64
	Positions []r3.Vec
	Stretch   []float64
}

type Result struct {
	Frames      []Frame
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Series extracts one coordinate of one body across all frames.
// axis is 0 for x and 1 for y.
func (r *Result) Series(body physics.BodyID, axis int) []float64 {
	out := make([]float64, 0, len(r.Frames))
	for _, f := range r.Frames {
		if int(body) >= len(f.Positions) {
			continue
		}
		p := f.Positions[body]
		if axis == 1 {
			out = append(out, p.Y)
		} else {
			out = append(out, p.X)
		}
	}
	return out
}

// Times returns the timestamp of every frame.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Time
	}
	return out
}
