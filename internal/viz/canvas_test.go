package viz

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	if w, h := c.PixelSize(); w != 4 || h != 4 {
		t.Fatalf("pixel size = %dx%d, want 4x4", w, h)
	}

	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 2)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("cell 0 = %U, want %U", c.Grid[0][0], rune(blank|0x1))
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("cell 1 = %U, want %U", c.Grid[0][1], rune(blank|0x80))
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(3, 3)
	if c.IsSet(3, 3) {
		t.Error("Unset left pixel lit")
	}

	c.Clear()
	if got := c.String(); got != strings.Repeat(string(rune(blank)), 2)+"\n" {
		t.Errorf("cleared canvas = %q", got)
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 7, 3)
	for _, p := range [][2]int{{0, 0}, {7, 3}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("endpoint %v not drawn", p)
		}
	}
}

func TestFillDisc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillDisc(10, 10, 2)
	tests := []struct {
		x, y int
		want bool
	}{
		{10, 10, true},
		{12, 10, true},
		{10, 8, true},
		{12, 12, false},
		{13, 10, false},
	}
	for _, tt := range tests {
		if got := c.IsSet(tt.x, tt.y); got != tt.want {
			t.Errorf("IsSet(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFitViewport(t *testing.T) {
	c := NewCanvas(10, 5) // 20x20 pixels
	v := FitViewport(c, []r3.Vec{{X: 0, Y: 0}, {X: 2, Y: 1}}, 0)

	if v.Scale != 9.5 {
		t.Fatalf("scale = %v, want 9.5", v.Scale)
	}

	tests := []struct {
		name string
		p    r3.Vec
		x, y int
	}{
		{"lower left", r3.Vec{}, 0, 14},
		{"upper right", r3.Vec{X: 2, Y: 1}, 19, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := v.ToPixel(tt.p)
			if x != tt.x || y != tt.y {
				t.Errorf("ToPixel(%v) = (%d, %d), want (%d, %d)", tt.p, x, y, tt.x, tt.y)
			}
		})
	}
}

func TestFitViewportDegenerate(t *testing.T) {
	c := NewCanvas(10, 5)
	for _, pts := range [][]r3.Vec{nil, {{X: 3, Y: 3}}} {
		v := FitViewport(c, pts, 0)
		if v.Scale <= 0 {
			t.Errorf("scale for %v = %v, want positive", pts, v.Scale)
		}
	}
}

func TestDrawPolyline(t *testing.T) {
	c := NewCanvas(10, 5)
	pts := []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	v := FitViewport(c, pts, 0)
	c.DrawPolyline(v, pts)
	for _, p := range pts {
		if x, y := v.ToPixel(p); !c.IsSet(x, y) {
			t.Errorf("vertex %v at (%d, %d) not drawn", p, x, y)
		}
	}
}

func TestViewportVisible(t *testing.T) {
	c := NewCanvas(10, 5)
	v := FitViewport(c, []r3.Vec{{}, {X: 1, Y: 1}}, 0)

	tests := []struct {
		name string
		p    r3.Vec
		want bool
	}{
		{"inside", r3.Vec{X: 0.5, Y: 0.5}, true},
		{"just outside", r3.Vec{X: 1.5}, true},
		{"far away", r3.Vec{X: 1e6}, false},
		{"nan", r3.Vec{X: math.NaN()}, false},
		{"inf", r3.Vec{Y: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Visible(tt.p); got != tt.want {
				t.Errorf("Visible(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	c.DrawSegment(v, r3.Vec{}, r3.Vec{X: math.NaN()})
	if c.IsSet(v.ToPixel(r3.Vec{})) {
		t.Error("segment to a NaN point was drawn")
	}
}
