package analysis

import (
	"strings"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

// BifurcationPoint holds the distinct peak values seen for one parameter.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// ParamWorldFunc builds a scene for one value of a swept parameter.
type ParamWorldFunc func(param float64) (*sim.World, error)

// BifurcationDiagram sweeps a scene parameter and records the local maxima
// of one body coordinate (axis 0 for x, 1 for y) after a transient.
// Peaks are quantized to 1e-3 so a periodic orbit shows up as a few values.
func BifurcationDiagram(
	build ParamWorldFunc,
	body physics.BodyID,
	axis int,
	paramMin, paramMax float64,
	paramSteps int,
	dt, transient, record float64,
) ([]BifurcationPoint, error) {
	if paramSteps <= 1 {
		paramSteps = 2
	}
	paramStep := (paramMax - paramMin) / float64(paramSteps-1)
	results := make([]BifurcationPoint, 0, paramSteps)

	for i := 0; i < paramSteps; i++ {
		param := paramMin + float64(i)*paramStep

		w, err := build(param)
		if err != nil {
			return nil, err
		}
		b, err := w.Body(body)
		if err != nil {
			return nil, err
		}

		for w.Time() < transient-1e-9 {
			if err := w.Step(dt); err != nil {
				return nil, err
			}
		}

		values := make([]float64, 0, 16)
		seen := make(map[int]bool)
		prev2, prev1 := coord(b, axis), coord(b, axis)
		for w.Time() < transient+record-1e-9 {
			if err := w.Step(dt); err != nil {
				return nil, err
			}
			cur := coord(b, axis)
			if prev1 > prev2 && prev1 >= cur {
				key := int(prev1 * 1000)
				if !seen[key] {
					seen[key] = true
					values = append(values, prev1)
				}
			}
			prev2, prev1 = prev1, cur
		}

		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

func coord(b *physics.Body, axis int) float64 {
	if axis == 1 {
		return b.Position().Y
	}
	return b.Position().X
}

// BifurcationToASCII draws one column per parameter value.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := blankCanvas(width, height)
	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	return renderCanvas(canvas)
}

func blankCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	return canvas
}

func renderCanvas(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
