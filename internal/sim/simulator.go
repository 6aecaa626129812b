package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps w for cfg.Duration and records a frame every cfg.RecordEvery
// ticks. Cancellation is checked between ticks only.
func (s *Simulator) Run(ctx context.Context, w *World, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	result := &Result{
		Frames:  make([]Frame, 0, steps/every+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	applied := make([]bool, len(cfg.Kicks))
	result.Frames = append(result.Frames, snapshot(w))
	initialEnergy := totalEnergy(w)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		kicked, err := ApplyKicks(w, cfg.Kicks, applied)
		if err != nil {
			return result, err
		}
		// kicks inject energy; drift is measured from the last one
		if kicked {
			initialEnergy = totalEnergy(w)
		}

		for _, m := range s.metrics {
			m.Observe(w)
		}
		for _, obs := range s.observers {
			obs.OnStep(w)
		}

		t := w.Time()
		if err := w.Step(cfg.Dt); err != nil {
			return result, err
		}
		result.StepsTaken++

		if cfg.ValidateState && !w.IsValid() {
			err := dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)", Err: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			break
		}

		if result.StepsTaken%every == 0 {
			result.Frames = append(result.Frames, snapshot(w))
		}
	}

	finalEnergy := totalEnergy(w)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// ApplyKicks fires every kick whose time has come and that applied does not
// already mark. It reports whether any kick fired.
func ApplyKicks(w *World, kicks []Kick, applied []bool) (bool, error) {
	const slack = 1e-9
	kicked := false
	for i, k := range kicks {
		if applied[i] || k.At > w.Time()+slack {
			continue
		}
		if err := w.Kick(k.Body, k.Velocity); err != nil {
			return kicked, fmt.Errorf("kick at t=%.4f: %w", k.At, err)
		}
		applied[i] = true
		kicked = true
	}
	return kicked, nil
}

func totalEnergy(w *World) float64 {
	ke, pe := w.Energy()
	return ke + pe
}

func snapshot(w *World) Frame {
	bodies := w.Bodies()
	springs := w.Springs()
	f := Frame{
		Time:      w.Time(),
		Positions: make([]r3.Vec, len(bodies)),
		Stretch:   make([]float64, len(springs)),
	}
	for i, b := range bodies {
		f.Positions[i] = b.Position()
	}
	for i, s := range springs {
		f.Stretch[i] = s.StretchRatio()
	}
	return f
}

// RunWithCallback steps w until Duration elapses or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, w *World, cfg Config, callback func(*World) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	applied := make([]bool, len(cfg.Kicks))
	end := w.Time() + cfg.Duration
	for w.Time() < end-1e-9 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if _, err := ApplyKicks(w, cfg.Kicks, applied); err != nil {
			return err
		}

		if !callback(w) {
			return nil
		}

		if err := w.Step(cfg.Dt); err != nil {
			return err
		}

		if cfg.ValidateState && !w.IsValid() {
			return fmt.Errorf("invalid state at t=%.4f: %w", w.Time(), dynamo.ErrInvalidState)
		}
	}

	return nil
}
