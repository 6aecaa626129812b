package viz

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

var errCoincident = errors.New("endpoints coincide")

// SpringShape is a zig-zag polyline between two points: a straight lead,
// 2·coils slanted segments and a trailing lead. The first and last slanted
// segments rise only half the height so the coil starts and ends on axis.
//
// It implements physics.Drawable, so a World reshapes it incrementally each
// tick without regenerating the geometry.
type SpringShape struct {
	points []r3.Vec
	angle  float64
	coils  int
	height float64
}

// NewSpringShape lays the zig-zag out between start and end.
func NewSpringShape(start, end r3.Vec, coils int, height float64) (*SpringShape, error) {
	if coils < 1 {
		return nil, fmt.Errorf("spring shape: coils must be positive, got %d", coils)
	}
	delta := r3.Sub(end, start)
	dist := r3.Norm(delta)
	if dist < physics.Epsilon {
		return nil, fmt.Errorf("spring shape: %w", errCoincident)
	}

	dir := r3.Scale(1/dist, delta)
	normal := r3.Vec{X: dir.Y, Y: -dir.X}
	section := dist / float64(coils+1) / 2
	lead := r3.Scale(section, dir)

	pts := make([]r3.Vec, 0, 2*coils+3)
	cur := start
	pts = append(pts, cur)
	cur = r3.Add(cur, lead)
	pts = append(pts, cur)

	n := 2 * coils
	for j := 0; j < n; j++ {
		rise := height
		if j%2 == 1 {
			rise = -height
		}
		if j == 0 || j == n-1 {
			rise /= 2
		}
		cur = r3.Add(cur, r3.Add(lead, r3.Scale(rise, normal)))
		pts = append(pts, cur)
	}
	pts = append(pts, r3.Add(cur, lead))

	return &SpringShape{
		points: pts,
		angle:  physics.SignedAngle(dir),
		coils:  coils,
		height: height,
	}, nil
}

// Points returns the polyline vertices. The slice is owned by the shape.
func (s *SpringShape) Points() []r3.Vec { return s.points }
func (s *SpringShape) Angle() float64   { return s.angle }
func (s *SpringShape) Coils() int       { return s.coils }
func (s *SpringShape) Height() float64  { return s.height }

// Endpoints returns the first and last vertex.
func (s *SpringShape) Endpoints() (r3.Vec, r3.Vec) {
	return s.points[0], s.points[len(s.points)-1]
}

// Center is the midpoint of the endpoints.
func (s *SpringShape) Center() r3.Vec {
	a, b := s.Endpoints()
	return r3.Scale(0.5, r3.Add(a, b))
}

// Length is the distance between the endpoints.
func (s *SpringShape) Length() float64 {
	a, b := s.Endpoints()
	return r3.Norm(r3.Sub(b, a))
}

// Rotate turns the shape about its center.
func (s *SpringShape) Rotate(angle float64) {
	if angle == 0 {
		return
	}
	c := s.Center()
	sin, cos := math.Sincos(angle)
	for i, p := range s.points {
		d := r3.Sub(p, c)
		s.points[i] = r3.Vec{
			X: c.X + d.X*cos - d.Y*sin,
			Y: c.Y + d.X*sin + d.Y*cos,
		}
	}
	s.angle += angle
}

// Scale stretches the shape about its center along its own axis (long)
// and across it (transverse).
func (s *SpringShape) Scale(long, transverse float64) {
	if long == 1 && transverse == 1 {
		return
	}
	c := s.Center()
	sin, cos := math.Sincos(s.angle)
	axis := r3.Vec{X: cos, Y: sin}
	across := r3.Vec{X: -sin, Y: cos}
	for i, p := range s.points {
		d := r3.Sub(p, c)
		u := r3.Dot(d, axis) * long
		v := r3.Dot(d, across) * transverse
		s.points[i] = r3.Add(c, r3.Add(r3.Scale(u, axis), r3.Scale(v, across)))
	}
}

// MoveTo translates the shape so its center lands on center.
func (s *SpringShape) MoveTo(center r3.Vec) {
	shift := r3.Sub(center, s.Center())
	for i, p := range s.points {
		s.points[i] = r3.Add(p, shift)
	}
}

// AttachShapes builds one SpringShape per spring of w, using the coil
// count and height cfg gives the matching spring, and attaches each so the
// world keeps it in step. Springs are matched to cfg.Springs by index.
func AttachShapes(w *sim.World, cfg *config.Config) ([]*SpringShape, error) {
	springs := w.Springs()
	shapes := make([]*SpringShape, len(springs))
	for i, sp := range springs {
		coils, height := config.DefaultCoils, config.DefaultHeight
		if cfg != nil && i < len(cfg.Springs) {
			coils, height = cfg.Springs[i].CoilsOrDefault(), cfg.Springs[i].HeightOrDefault()
		}
		shape, err := NewSpringShape(sp.Start().Position(), sp.End().Position(), coils, height)
		if err != nil {
			return nil, fmt.Errorf("spring %d: %w", i, err)
		}
		if err := w.Attach(i, shape); err != nil {
			return nil, err
		}
		shapes[i] = shape
	}
	return shapes, nil
}
