package physics

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// MinRadius keeps masses below 10^0.2 visible.
const MinRadius = 0.05

// Radius maps a mass to a drawing radius, 0.25·log10(mass).
func Radius(mass float64) float64 {
	if mass <= 0 {
		return MinRadius
	}
	return math.Max(MinRadius, 0.25*math.Log10(mass))
}

// WallEnds returns the drawn extent of a wall: its position ± Height·ŷ.
func WallEnds(w *Wall) (bottom, top r3.Vec) {
	h := r3.Vec{Y: w.Height()}
	return r3.Sub(w.Position(), h), r3.Add(w.Position(), h)
}

// Label formats a mass as whole kilograms with thousands separators.
func Label(mass float64) string {
	n := int64(mass)
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(" kg")
	return b.String()
}
