package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells. Pixels are addressed in sub-cell
// coordinates, so a Width x Height canvas has (Width*2) x (Height*4) pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// PixelSize returns the canvas size in pixels.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the pixel at (x, y). Out of range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	mask := ^rune(pixelMap[y%4][x%2])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillDisc lights every pixel within r of (cx, cy).
func (c *Canvas) FillDisc(cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates onto canvas pixels with one scale for
// both axes, so circles stay round. World +y points up the screen.
type Viewport struct {
	MinX, MinY    float64
	Scale         float64
	OffsetX       float64
	OffsetY       float64
	Width, Height int
}

// FitViewport frames the bounding box of points, padded by margin world
// units on every side, and centers it on c.
func FitViewport(c *Canvas, points []r3.Vec, margin float64) Viewport {
	w, h := c.PixelSize()
	return FrameViewport(w, h, points, margin)
}

// FrameViewport is FitViewport for any w x h pixel surface.
func FrameViewport(w, h int, points []r3.Vec, margin float64) Viewport {
	if len(points) == 0 {
		points = []r3.Vec{{}}
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	minX, maxX = minX-margin, maxX+margin
	minY, maxY = minY-margin, maxY+margin

	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	scale := math.Min(float64(w-1)/spanX, float64(h-1)/spanY)
	return Viewport{
		MinX:    minX,
		MinY:    minY,
		Scale:   scale,
		OffsetX: (float64(w-1) - spanX*scale) / 2,
		OffsetY: (float64(h-1) - spanY*scale) / 2,
		Width:   w,
		Height:  h,
	}
}

// ToPoint converts a world point to unrounded surface coordinates, y down.
func (v Viewport) ToPoint(p r3.Vec) (float64, float64) {
	x := v.OffsetX + (p.X-v.MinX)*v.Scale
	y := v.OffsetY + (p.Y-v.MinY)*v.Scale
	return x, float64(v.Height-1) - y
}

// ToPixel converts a world point to pixel coordinates.
func (v Viewport) ToPixel(p r3.Vec) (int, int) {
	x, y := v.ToPoint(p)
	return int(math.Round(x)), int(math.Round(y))
}

// Visible reports whether p maps to a finite pixel near the canvas. Points
// far outside would make Bresenham walk millions of pixels.
func (v Viewport) Visible(p r3.Vec) bool {
	x := v.OffsetX + (p.X-v.MinX)*v.Scale
	y := v.OffsetY + (p.Y-v.MinY)*v.Scale
	return math.Abs(x) < float64(4*v.Width) && math.Abs(y) < float64(4*v.Height)
}

// DrawSegment draws the world-space segment a-b. Segments with an endpoint
// that is not Visible are skipped.
func (c *Canvas) DrawSegment(v Viewport, a, b r3.Vec) {
	if !v.Visible(a) || !v.Visible(b) {
		return
	}
	x0, y0 := v.ToPixel(a)
	x1, y1 := v.ToPixel(b)
	c.DrawLine(x0, y0, x1, y1)
}

// DrawPolyline joins consecutive world-space points.
func (c *Canvas) DrawPolyline(v Viewport, points []r3.Vec) {
	for i := 1; i < len(points); i++ {
		c.DrawSegment(v, points[i-1], points[i])
	}
}
