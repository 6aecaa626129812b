package physics

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind distinguishes bodies that integrate from bodies that never move.
type Kind int

const (
	MovablePoint Kind = iota
	FixedAnchor
)

func (k Kind) String() string {
	switch k {
	case MovablePoint:
		return "mass"
	case FixedAnchor:
		return "anchor"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// BodyID is an opaque identity. sim.World hands out arena indexes.
type BodyID int

// Body is a point mass or a fixed anchor. Anchors accumulate force like any
// other body so spring code stays symmetric, but never consume it.
type Body struct {
	id       BodyID
	kind     Kind
	position r3.Vec
	velocity r3.Vec
	force    r3.Vec
	mass     float64
	height   float64
}

// NewMass creates a movable point at pos with zero velocity and force.
func NewMass(id BodyID, mass float64, pos r3.Vec) (*Body, error) {
	if !(mass > 0) {
		return nil, fmt.Errorf("body %d: mass %g: %w", id, mass, dynamo.ErrInvalidMass)
	}
	return &Body{id: id, kind: MovablePoint, position: planar(pos), mass: mass}, nil
}

// NewAnchor creates an immovable body at pos.
func NewAnchor(id BodyID, pos r3.Vec) *Body {
	return &Body{id: id, kind: FixedAnchor, position: planar(pos)}
}

// Wall is an anchor with a half-height used only for drawing.
type Wall = Body

// NewWall creates an anchor carrying a visual half-height.
func NewWall(id BodyID, height float64, pos r3.Vec) *Wall {
	b := NewAnchor(id, pos)
	b.height = height
	return b
}

func planar(v r3.Vec) r3.Vec {
	v.Z = 0
	return v
}

func (b *Body) ID() BodyID       { return b.id }
func (b *Body) Kind() Kind       { return b.kind }
func (b *Body) IsMovable() bool  { return b.kind == MovablePoint }
func (b *Body) Position() r3.Vec { return b.position }
func (b *Body) Velocity() r3.Vec { return b.velocity }
func (b *Body) Force() r3.Vec    { return b.force }
func (b *Body) Height() float64  { return b.height }

// Mass returns the body's mass; anchors report 0.
func (b *Body) Mass() float64 {
	if b.kind != MovablePoint {
		return 0
	}
	return b.mass
}

// AddForce adds f into the accumulator.
func (b *Body) AddForce(f r3.Vec) {
	b.force = r3.Add(b.force, f)
}

// Kick adds dv to the velocity of a movable body between ticks.
func (b *Body) Kick(dv r3.Vec) error {
	if b.kind != MovablePoint {
		return fmt.Errorf("kick body %d: %w", b.id, dynamo.ErrImmovableBody)
	}
	b.velocity = r3.Add(b.velocity, planar(dv))
	return nil
}

// KineticEnergy is ½mv²; zero for anchors.
func (b *Body) KineticEnergy() float64 {
	if b.kind != MovablePoint {
		return 0
	}
	return 0.5 * b.mass * r3.Norm2(b.velocity)
}
