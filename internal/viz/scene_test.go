package viz

import (
	"testing"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func wallWorld(t *testing.T) (*sim.World, *physics.Body, *physics.Wall) {
	t.Helper()
	w := sim.NewWorld()
	m, err := w.AddMass(100, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	wall := w.AddWall(0.5, r3.Vec{X: 3})
	if _, err := w.AddSpring(1, m.ID(), wall.ID()); err != nil {
		t.Fatal(err)
	}
	return w, m, wall
}

func TestExtent(t *testing.T) {
	w, _, _ := wallWorld(t)
	pts := Extent(w, nil)
	want := []r3.Vec{{}, {X: 3, Y: -0.5}, {X: 3, Y: 0.5}}
	if len(pts) != len(want) {
		t.Fatalf("got %d points, want %d", len(pts), len(want))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}
}

func TestDrawWorld(t *testing.T) {
	w, m, wall := wallWorld(t)
	c := NewCanvas(40, 10)
	v := FitWorld(c, w, nil)
	DrawWorld(c, v, w, nil)

	lo, hi := physics.WallEnds(wall)
	for name, p := range map[string]r3.Vec{"mass": m.Position(), "wall bottom": lo, "wall top": hi} {
		if x, y := v.ToPixel(p); !c.IsSet(x, y) {
			t.Errorf("%s at (%d, %d) not drawn", name, x, y)
		}
	}

	// radius 0.5 world units covers pixels beside the center
	x, y := v.ToPixel(m.Position())
	if !c.IsSet(x+1, y) || !c.IsSet(x, y-1) {
		t.Error("mass drawn without a disc")
	}
}

func TestDrawWorldUsesShapes(t *testing.T) {
	w, _, _ := wallWorld(t)
	shapes, err := AttachShapes(w, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCanvas(40, 10)
	v := FitWorld(c, w, shapes)
	DrawWorld(c, v, w, shapes)

	for i, p := range shapes[0].Points() {
		if x, y := v.ToPixel(p); !c.IsSet(x, y) {
			t.Errorf("shape vertex %d not drawn", i)
		}
	}
}

func TestTrail(t *testing.T) {
	tr := NewTrail(2)
	for i := 0; i < 3; i++ {
		tr.Push(r3.Vec{X: float64(i)})
	}
	pts := tr.Points()
	if len(pts) != 2 || pts[0].X != 1 || pts[1].X != 2 {
		t.Errorf("trail = %v, want last two points", pts)
	}

	c := NewCanvas(10, 5)
	v := FitViewport(c, pts, 0)
	tr.Draw(c, v)
	if x, y := v.ToPixel(pts[1]); !c.IsSet(x, y) {
		t.Error("trail point not drawn")
	}

	tr.Reset()
	if len(tr.Points()) != 0 {
		t.Error("Reset kept points")
	}
}
