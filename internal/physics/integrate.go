package physics

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Integrator advances one body over dt and leaves its force accumulator zeroed.
type Integrator interface {
	Integrate(b *Body, dt float64) error
}

// SemiImplicitEuler updates velocity from force, then position from the new
// velocity, in the same step.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (SemiImplicitEuler) Integrate(b *Body, dt float64) error {
	return Integrate(b, dt)
}

// CheckIntegrable reports whether b can be integrated: anchors always can,
// movable bodies need a positive mass.
func CheckIntegrable(b *Body) error {
	if b.kind == MovablePoint && !(b.mass > 0) {
		return fmt.Errorf("integrate body %d: mass %g: %w", b.id, b.mass, dynamo.ErrInvalidState)
	}
	return nil
}

// Integrate applies v += F/m·dt, x += v·dt, F = 0 to a movable body. Anchors
// only have their accumulator cleared. dt may be zero or negative.
func Integrate(b *Body, dt float64) error {
	if err := CheckIntegrable(b); err != nil {
		return err
	}
	if b.kind != MovablePoint {
		b.force = r3.Vec{}
		return nil
	}

	b.velocity = r3.Add(b.velocity, r3.Scale(dt/b.mass, b.force))
	b.position = r3.Add(b.position, r3.Scale(dt, b.velocity))
	b.force = r3.Vec{}
	return nil
}

// ExplicitEuler advances position with the velocity from before the force
// is applied. It gains energy on oscillators and exists for comparison runs.
type ExplicitEuler struct{}

func NewExplicitEuler() *ExplicitEuler {
	return &ExplicitEuler{}
}

func (ExplicitEuler) Integrate(b *Body, dt float64) error {
	if err := CheckIntegrable(b); err != nil {
		return err
	}
	if b.kind != MovablePoint {
		b.force = r3.Vec{}
		return nil
	}

	b.position = r3.Add(b.position, r3.Scale(dt, b.velocity))
	b.velocity = r3.Add(b.velocity, r3.Scale(dt/b.mass, b.force))
	b.force = r3.Vec{}
	return nil
}
