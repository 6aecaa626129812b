package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	background  = "#0a0a0a"
	springColor = "#00ffff"
	massColor   = "#ff00ff"
	wallColor   = "#cccccc"
	labelColor  = "#ffffff"
	margin      = 0.5
)

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// path writes points as an open SVG path.
func path(sb *strings.Builder, v viz.Viewport, points []r3.Vec, stroke string, strokeWidth float64) {
	if len(points) < 2 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f" stroke-linejoin="round" d="M`, stroke, strokeWidth))
	for i, p := range points {
		x, y := v.ToPoint(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}

// SceneToSVG draws the world as vectors: springs as their shapes (or
// straight lines when shapes is short), walls as vertical strokes, anchors
// as crosses and masses as labeled discs sized by physics.Radius.
func SceneToSVG(w *sim.World, shapes []*viz.SpringShape, width, height int) string {
	v := viz.FrameViewport(width, height, viz.Extent(w, shapes), margin)

	var sb strings.Builder
	header(&sb, width, height)

	sb.WriteString("<g id=\"springs\">\n")
	for i, sp := range w.Springs() {
		pts := []r3.Vec{sp.Start().Position(), sp.End().Position()}
		if i < len(shapes) && shapes[i] != nil {
			pts = shapes[i].Points()
		}
		path(&sb, v, pts, springColor, 1.5)
	}
	sb.WriteString("</g>\n<g id=\"bodies\">\n")

	for _, b := range w.Bodies() {
		x, y := v.ToPoint(b.Position())
		switch {
		case b.Height() > 0:
			lo, hi := physics.WallEnds(b)
			path(&sb, v, []r3.Vec{lo, hi}, wallColor, 3)
		case !b.IsMovable():
			sb.WriteString(fmt.Sprintf(`<path stroke="%s" stroke-width="2" d="M%.1f,%.1f l8,8 m0,-8 l-8,8"/>
`, wallColor, x-4, y-4))
		default:
			r := physics.Radius(b.Mass()) * v.Scale
			sb.WriteString(fmt.Sprintf(`<circle id="%s" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, w.NameOf(b.ID()), x, y, r, massColor))
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12" text-anchor="middle">%s</text>
`, x, y-r-4, labelColor, physics.Label(b.Mass())))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG plots the path of one body through a run's frames.
func TrajectoryToSVG(frames []sim.Frame, body physics.BodyID, width, height int, strokeColor string) string {
	points := make([]r3.Vec, 0, len(frames))
	for _, f := range frames {
		if int(body) < len(f.Positions) {
			points = append(points, f.Positions[body])
		}
	}
	if len(points) < 2 {
		return ""
	}

	v := viz.FrameViewport(width, height, points, 0)
	// pad by a tenth of the larger span
	pad := 0.1 * float64(max(width, height)) / v.Scale
	v = viz.FrameViewport(width, height, points, pad)

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, v, points, strokeColor, 1.5)
	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG, one dot per lit pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width := int(float64(pw) * scale)
	height := int(float64(ph) * scale)

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", springColor))

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
