package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/sim"
)

func TestLinspace(t *testing.T) {
	tests := []struct {
		lo, hi float64
		n      int
		want   []float64
	}{
		{1, 3, 3, []float64{1, 2, 3}},
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{2, 9, 1, []float64{2}},
		{2, 9, 0, []float64{2}},
	}
	for _, tt := range tests {
		got := Linspace(tt.lo, tt.hi, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("Linspace(%v, %v, %d) = %v", tt.lo, tt.hi, tt.n, got)
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Errorf("Linspace(%v, %v, %d)[%d] = %v, want %v", tt.lo, tt.hi, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

// finalX scores a run by how far its first body ends from x.
func finalX(x float64) Objective {
	return func(r *sim.Result) float64 {
		last := r.Frames[len(r.Frames)-1]
		return math.Abs(last.Positions[0].X - x)
	}
}

func TestGridSearchFindsStiffestSpring(t *testing.T) {
	scene := config.GetPreset("pair")
	scene.Duration = 1

	// a stiffer spring resists the kick more, so the kicked mass ends
	// nearer its start
	g := NewGridSearch([]int{0}, [][]float64{{0.5, 2, 8}})
	best, score, err := g.Search(context.Background(), scene, "semi-implicit", experiment.NewRegistry(),
		func(r *sim.Result) float64 {
			last := r.Frames[len(r.Frames)-1]
			return math.Abs(last.Positions[1].X - 1)
		})
	if err != nil {
		t.Fatal(err)
	}
	if best[0] != 8 {
		t.Errorf("best = %v (score %f), want k=8", best, score)
	}
	if scene.Springs[0].K != 2 {
		t.Error("search mutated the scene")
	}
}

func TestGridSearchCoversEveryCombination(t *testing.T) {
	scene := config.GetPreset("chain")
	scene.Duration = 0.1

	runs := 0
	g := NewGridSearch([]int{0, 3}, [][]float64{{1, 2, 3}, {1, 2}})
	_, _, err := g.Search(context.Background(), scene, "euler", experiment.NewRegistry(), func(r *sim.Result) float64 {
		runs++
		return finalX(-1)(r)
	})
	if err != nil {
		t.Fatal(err)
	}
	if runs != 6 {
		t.Errorf("runs = %d, want 6", runs)
	}
}

func TestGridSearchSkipsDivergedRuns(t *testing.T) {
	scene := config.GetPreset("pair")
	scene.Duration = 1

	// the infinite constant blows up on the first tick, leaving only the
	// starting frame, which scores perfectly
	g := NewGridSearch([]int{0}, [][]float64{{math.Inf(1), 2}})
	best, score, err := g.Search(context.Background(), scene, "semi-implicit", experiment.NewRegistry(), finalX(-1))
	if err != nil {
		t.Fatal(err)
	}
	if best[0] != 2 {
		t.Errorf("best = %v (score %f), want k=2", best, score)
	}
}

func TestGridSearchSkipsNaNScores(t *testing.T) {
	scene := config.GetPreset("pair")
	scene.Duration = 0.5

	g := NewGridSearch([]int{0}, [][]float64{{1, 2}})
	nan := func(*sim.Result) float64 { return math.NaN() }
	best, _, err := g.Search(context.Background(), scene, "euler", experiment.NewRegistry(), nan)
	if err == nil {
		t.Errorf("expected an error when every score is NaN, got best %v", best)
	}
}

func TestGridSearchErrors(t *testing.T) {
	scene := config.GetPreset("pair")
	registry := experiment.NewRegistry()
	score := finalX(0)

	tests := []struct {
		name       string
		g          *GridSearch
		integrator string
	}{
		{"mismatched ranges", NewGridSearch([]int{0}, nil), "euler"},
		{"spring out of range", NewGridSearch([]int{4}, [][]float64{{1}}), "euler"},
		{"unknown integrator", NewGridSearch([]int{0}, [][]float64{{1}}), "leapfrog"},
		{"every point invalid", NewGridSearch([]int{0}, [][]float64{{math.Inf(1)}}), "euler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.g.Search(context.Background(), scene, tt.integrator, registry, score); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
