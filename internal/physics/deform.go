package physics

import "gonum.org/v1/gonum/spatial/r3"

// Deformation is the incremental view update a spring emits each tick.
type Deformation struct {
	Rotate          float64
	ScaleLong       float64
	ScaleTransverse float64
	Center          r3.Vec
}

// Drawable is anything that can be reshaped in place by a Deformation.
type Drawable interface {
	// Rotate turns the shape by angle radians around its own center.
	Rotate(angle float64)
	// Scale stretches the shape along its local long and transverse axes.
	Scale(long, transverse float64)
	// MoveTo translates the shape so its center lands on center.
	MoveTo(center r3.Vec)
}

// Deform applies d to drawable: rotate, then scale, then translate.
func Deform(drawable Drawable, d Deformation) {
	if drawable == nil {
		return
	}
	drawable.Rotate(d.Rotate)
	drawable.Scale(d.ScaleLong, d.ScaleTransverse)
	drawable.MoveTo(d.Center)
}
