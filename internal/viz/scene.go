package viz

import (
	"math"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// sceneMargin pads the framed scene, in world units.
const sceneMargin = 0.5

// Extent collects the points a frame of w must keep on screen: every body
// (walls by both ends) and every shape vertex.
func Extent(w *sim.World, shapes []*SpringShape) []r3.Vec {
	pts := make([]r3.Vec, 0, 2*len(w.Bodies()))
	for _, b := range w.Bodies() {
		if b.Height() > 0 {
			lo, hi := physics.WallEnds(b)
			pts = append(pts, lo, hi)
			continue
		}
		pts = append(pts, b.Position())
	}
	for _, s := range shapes {
		if s != nil {
			pts = append(pts, s.Points()...)
		}
	}
	return pts
}

// FitWorld frames the current state of w on c.
func FitWorld(c *Canvas, w *sim.World, shapes []*SpringShape) Viewport {
	return FitViewport(c, Extent(w, shapes), sceneMargin)
}

// DrawWorld renders springs, then walls, anchors and masses. A spring
// without a shape is drawn as a straight segment.
func DrawWorld(c *Canvas, v Viewport, w *sim.World, shapes []*SpringShape) {
	for i, sp := range w.Springs() {
		if i < len(shapes) && shapes[i] != nil {
			c.DrawPolyline(v, shapes[i].Points())
			continue
		}
		c.DrawSegment(v, sp.Start().Position(), sp.End().Position())
	}

	for _, b := range w.Bodies() {
		if !v.Visible(b.Position()) {
			continue
		}
		x, y := v.ToPixel(b.Position())
		switch {
		case b.Height() > 0:
			lo, hi := physics.WallEnds(b)
			c.DrawSegment(v, lo, hi)
		case !b.IsMovable():
			c.DrawLine(x-1, y-1, x+1, y+1)
			c.DrawLine(x-1, y+1, x+1, y-1)
		default:
			r := int(math.Round(physics.Radius(b.Mass()) * v.Scale))
			if r < 1 {
				r = 1
			}
			c.FillDisc(x, y, r)
		}
	}
}

// Trail is a fixed-size ring of past positions for one body.
type Trail struct {
	points []r3.Vec
	size   int
}

func NewTrail(size int) *Trail {
	return &Trail{points: make([]r3.Vec, 0, size), size: size}
}

func (t *Trail) Push(p r3.Vec) {
	t.points = append(t.points, p)
	if len(t.points) > t.size {
		t.points = t.points[1:]
	}
}

func (t *Trail) Points() []r3.Vec { return t.points }
func (t *Trail) Reset()           { t.points = t.points[:0] }

// Draw plots every stored position as a single pixel.
func (t *Trail) Draw(c *Canvas, v Viewport) {
	for _, p := range t.points {
		if v.Visible(p) {
			c.Set(v.ToPixel(p))
		}
	}
}
