package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMinChunk is the smallest slice of springs or bodies handed to a
// worker when a World steps in parallel.
const DefaultMinChunk = 64

// World owns every body and spring of a scene and sequences a tick:
// all springs accumulate, then every body integrates.
type World struct {
	// Workers > 1 splits both phases across goroutines.
	Workers int
	// MinChunk bounds how finely the phases are split.
	MinChunk int

	integrator physics.Integrator
	bodies     []*physics.Body
	springs    []*physics.Spring
	names      map[string]physics.BodyID
	labels     map[physics.BodyID]string
	drawables  map[int]physics.Drawable

	buffers      [][]r3.Vec
	deformations []physics.Deformation

	time  float64
	ticks int
}

func NewWorld() *World {
	return &World{
		MinChunk:   DefaultMinChunk,
		integrator: physics.NewSemiImplicitEuler(),
		bodies:     make([]*physics.Body, 0),
		springs:    make([]*physics.Spring, 0),
		names:      make(map[string]physics.BodyID),
		labels:     make(map[physics.BodyID]string),
		drawables:  make(map[int]physics.Drawable),
	}
}

// SetIntegrator replaces the per-body integrator.
func (w *World) SetIntegrator(i physics.Integrator) { w.integrator = i }

func (w *World) nextID() physics.BodyID { return physics.BodyID(len(w.bodies)) }

// AddMass creates a movable body; its ID is its arena index.
func (w *World) AddMass(mass float64, pos r3.Vec) (*physics.Body, error) {
	b, err := physics.NewMass(w.nextID(), mass, pos)
	if err != nil {
		return nil, err
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

func (w *World) AddAnchor(pos r3.Vec) *physics.Body {
	b := physics.NewAnchor(w.nextID(), pos)
	w.bodies = append(w.bodies, b)
	return b
}

func (w *World) AddWall(height float64, pos r3.Vec) *physics.Wall {
	b := physics.NewWall(w.nextID(), height, pos)
	w.bodies = append(w.bodies, b)
	return b
}

// AddSpring connects two bodies already in the world.
func (w *World) AddSpring(k float64, start, end physics.BodyID) (*physics.Spring, error) {
	a, err := w.Body(start)
	if err != nil {
		return nil, err
	}
	b, err := w.Body(end)
	if err != nil {
		return nil, err
	}
	s, err := physics.NewSpring(k, a, b)
	if err != nil {
		return nil, err
	}
	w.springs = append(w.springs, s)
	return s, nil
}

// Name binds a label to a body for lookups from scene files and the CLI.
// A body bound more than once keeps its first label for NameOf.
func (w *World) Name(id physics.BodyID, name string) error {
	if _, err := w.Body(id); err != nil {
		return err
	}
	if old, ok := w.names[name]; ok && old != id && w.labels[old] == name {
		delete(w.labels, old)
	}
	w.names[name] = id
	if _, ok := w.labels[id]; !ok {
		w.labels[id] = name
	}
	return nil
}

// Lookup resolves a name bound with Name.
func (w *World) Lookup(name string) (*physics.Body, error) {
	id, ok := w.names[name]
	if !ok {
		return nil, fmt.Errorf("body %q: %w", name, dynamo.ErrUnknownBody)
	}
	return w.bodies[id], nil
}

// NameOf returns the bound name of id, or "b<id>".
func (w *World) NameOf(id physics.BodyID) string {
	if name, ok := w.labels[id]; ok {
		return name
	}
	return fmt.Sprintf("b%d", id)
}

func (w *World) Body(id physics.BodyID) (*physics.Body, error) {
	if id < 0 || int(id) >= len(w.bodies) {
		return nil, fmt.Errorf("body %d: %w", id, dynamo.ErrUnknownBody)
	}
	return w.bodies[id], nil
}

func (w *World) Bodies() []*physics.Body    { return w.bodies }
func (w *World) Springs() []*physics.Spring { return w.springs }
func (w *World) Time() float64              { return w.time }
func (w *World) Ticks() int                 { return w.ticks }

// Attach routes spring i's deformation to d after every accumulation phase.
func (w *World) Attach(spring int, d physics.Drawable) error {
	if spring < 0 || spring >= len(w.springs) {
		return fmt.Errorf("attach: spring %d out of range [0, %d)", spring, len(w.springs))
	}
	w.drawables[spring] = d
	return nil
}

// Kick adds dv to a movable body's velocity between ticks.
func (w *World) Kick(id physics.BodyID, dv r3.Vec) error {
	b, err := w.Body(id)
	if err != nil {
		return err
	}
	return b.Kick(dv)
}

// Step runs one full tick. Forces are fully accumulated before any body
// integrates; dt may be zero or negative. Every body is checked before the
// first one moves, so a body that cannot integrate fails the tick with no
// position changed. A custom Integrator that fails partway through still
// leaves the tick half applied, and the world should be discarded.
func (w *World) Step(dt float64) error {
	for _, b := range w.bodies {
		if err := physics.CheckIntegrable(b); err != nil {
			return &dynamo.SimulationError{Step: w.ticks, Time: w.time, Wrapped: err}
		}
	}

	if w.Workers > 1 {
		w.accumulateParallel()
	} else {
		w.accumulate()
	}

	var err error
	if w.Workers > 1 {
		err = w.integrateParallel(dt)
	} else {
		err = w.integrate(dt)
	}
	if err != nil {
		return &dynamo.SimulationError{Step: w.ticks, Time: w.time, Wrapped: err}
	}

	w.time += dt
	w.ticks++
	return nil
}

func (w *World) accumulate() {
	for i, s := range w.springs {
		d := s.Apply()
		if dr, ok := w.drawables[i]; ok {
			physics.Deform(dr, d)
		}
	}
}

// accumulateParallel gives each chunk its own force buffer indexed by body
// ID and merges the buffers once every chunk has finished.
func (w *World) accumulateParallel() {
	n := len(w.springs)
	chunks := dynamo.Chunks(n, w.Workers, w.MinChunk)
	w.ensureBuffers(chunks)
	if cap(w.deformations) < n {
		w.deformations = make([]physics.Deformation, n)
	}
	w.deformations = w.deformations[:n]

	dynamo.ParallelFor(n, w.Workers, w.MinChunk, func(chunk, start, end int) {
		buf := w.buffers[chunk]
		for i := start; i < end; i++ {
			c, d := w.springs[i].Evaluate()
			buf[c.End.ID()] = r3.Add(buf[c.End.ID()], c.Force)
			buf[c.Start.ID()] = r3.Sub(buf[c.Start.ID()], c.Force)
			w.deformations[i] = d
		}
	})

	for _, buf := range w.buffers[:chunks] {
		for id, f := range buf {
			w.bodies[id].AddForce(f)
			buf[id] = r3.Vec{}
		}
	}

	for i, dr := range w.drawables {
		physics.Deform(dr, w.deformations[i])
	}
}

func (w *World) ensureBuffers(chunks int) {
	for len(w.buffers) < chunks {
		w.buffers = append(w.buffers, nil)
	}
	for i := range w.buffers {
		if len(w.buffers[i]) != len(w.bodies) {
			w.buffers[i] = make([]r3.Vec, len(w.bodies))
		}
	}
}

func (w *World) integrate(dt float64) error {
	for _, b := range w.bodies {
		if err := w.integrator.Integrate(b, dt); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) integrateParallel(dt float64) error {
	n := len(w.bodies)
	errs := make([]error, dynamo.Chunks(n, w.Workers, w.MinChunk))
	dynamo.ParallelFor(n, w.Workers, w.MinChunk, func(chunk, start, end int) {
		for i := start; i < end; i++ {
			if err := w.integrator.Integrate(w.bodies[i], dt); err != nil {
				errs[chunk] = err
				return
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Energy returns total kinetic and spring potential energy.
func (w *World) Energy() (kinetic, potential float64) {
	for _, b := range w.bodies {
		kinetic += b.KineticEnergy()
	}
	for _, s := range w.springs {
		potential += s.PotentialEnergy()
	}
	return kinetic, potential
}

// IsValid reports whether every body position and velocity is finite.
func (w *World) IsValid() bool {
	for _, b := range w.bodies {
		p, v := b.Position(), b.Velocity()
		for _, x := range [...]float64{p.X, p.Y, p.Z, v.X, v.Y, v.Z} {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}
