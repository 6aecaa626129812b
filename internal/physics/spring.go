package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the separation below which a spring's direction is undefined.
const Epsilon = 1e-9

// referenceAxis is the direction a spring angle is measured from.
var referenceAxis = r3.Vec{X: 1}

// Spring connects two bodies it does not own. RestLength is fixed at
// construction; StretchRatio and Angle track the last valid tick so the
// drawn shape can be updated incrementally.
type Spring struct {
	k            float64
	start, end   *Body
	restLength   float64
	stretchRatio float64
	angle        float64
	unit         r3.Vec
}

// NewSpring snapshots the rest length from the bodies' current positions.
func NewSpring(k float64, start, end *Body) (*Spring, error) {
	if start == nil || end == nil {
		return nil, fmt.Errorf("spring: nil endpoint: %w", dynamo.ErrUnknownBody)
	}

	delta := r3.Sub(end.position, start.position)
	distance := r3.Norm(delta)
	if !(distance >= Epsilon) {
		return nil, fmt.Errorf("spring %d-%d: %w", start.id, end.id, dynamo.ErrDegenerateSpring)
	}

	unit := r3.Scale(1/distance, delta)
	return &Spring{
		k:            k,
		start:        start,
		end:          end,
		restLength:   distance,
		stretchRatio: 1,
		angle:        SignedAngle(unit),
		unit:         unit,
	}, nil
}

func (s *Spring) K() float64            { return s.k }
func (s *Spring) Start() *Body          { return s.start }
func (s *Spring) End() *Body            { return s.end }
func (s *Spring) RestLength() float64   { return s.restLength }
func (s *Spring) StretchRatio() float64 { return s.stretchRatio }
func (s *Spring) Angle() float64        { return s.angle }

// Length is the current distance between the endpoints.
func (s *Spring) Length() float64 {
	return r3.Norm(r3.Sub(s.end.position, s.start.position))
}

// PotentialEnergy is ½k(d−L)².
func (s *Spring) PotentialEnergy() float64 {
	x := s.Length() - s.restLength
	return 0.5 * s.k * x * x
}

// Contribution is one spring's force pair for a tick. Force acts on End;
// Start receives exactly its negation.
type Contribution struct {
	Start, End *Body
	Force      r3.Vec
}

// Apply adds the pair into both accumulators.
func (c Contribution) Apply() {
	c.End.AddForce(c.Force)
	c.Start.AddForce(r3.Scale(-1, c.Force))
}

// Evaluate computes this tick's force pair and deformation. It updates the
// spring's own stretch and angle but writes nothing into the bodies.
func (s *Spring) Evaluate() (Contribution, Deformation) {
	p0, p1 := s.start.position, s.end.position
	center := r3.Scale(0.5, r3.Add(p0, p1))

	delta := r3.Sub(p1, p0)
	distance := r3.Norm(delta)

	// Coincident endpoints: keep the last direction, angle and stretch.
	if distance < Epsilon {
		magnitude := s.k * (s.restLength - distance)
		return Contribution{Start: s.start, End: s.end, Force: r3.Scale(magnitude, s.unit)},
			Deformation{ScaleLong: 1, ScaleTransverse: 1, Center: center}
	}

	unit := r3.Scale(1/distance, delta)
	s.unit = unit

	magnitude := s.k * (s.restLength - distance)
	c := Contribution{Start: s.start, End: s.end, Force: r3.Scale(magnitude, unit)}

	ratio := distance / s.restLength
	dStretch := ratio - s.stretchRatio
	s.stretchRatio = ratio

	angle := SignedAngle(unit)
	dAngle := angle - s.angle
	s.angle = angle

	return c, Deformation{
		Rotate:          dAngle,
		ScaleLong:       dStretch*math.Cos(angle) + 1,
		ScaleTransverse: dStretch*math.Sin(angle) + 1,
		Center:          center,
	}
}

// Apply evaluates the spring and accumulates its forces into both bodies.
func (s *Spring) Apply() Deformation {
	c, d := s.Evaluate()
	c.Apply()
	return d
}

// SignedAngle returns the angle of unit from +x in [−π, π]: acos of the dot
// product, negated below the x axis.
func SignedAngle(unit r3.Vec) float64 {
	cos := r3.Dot(referenceAxis, unit)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	angle := math.Acos(cos)
	if unit.Y < 0 {
		angle = -angle
	}
	return angle
}
