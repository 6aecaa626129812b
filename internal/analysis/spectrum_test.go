package analysis

import (
	"math"
	"testing"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"half hertz", 0.5, 0.01, 1000},
		{"two hertz", 2, 0.01, 1000},
		{"odd length", 1, 0.05, 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DominantFrequency(sine(tt.freq, tt.dt, tt.n), tt.dt)
			resolution := 1 / (tt.dt * float64(tt.n))
			if math.Abs(got-tt.freq) > resolution {
				t.Errorf("expected %f Hz, got %f", tt.freq, got)
			}
		})
	}
}

func TestDominantFrequencyDegenerate(t *testing.T) {
	if f := DominantFrequency(nil, 0.1); f != 0 {
		t.Errorf("expected 0 for empty series, got %f", f)
	}
	if f := DominantFrequency([]float64{2, 2, 2, 2}, 0.1); f != 0 {
		t.Errorf("expected 0 for constant series, got %f", f)
	}
	if f := DominantFrequency(sine(1, 0.01, 100), 0); f != 0 {
		t.Errorf("expected 0 for zero dt, got %f", f)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum(sine(1, 0.01, 200))
	if len(ps) != 101 {
		t.Fatalf("expected 101 bins, got %d", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("expected empty DC bin, got %g", ps[0])
	}
}

func TestSummary(t *testing.T) {
	s := Summary([]float64{1, 2, 3, 4, 5})
	if s.N != 5 || s.Mean != 3 || s.Min != 1 || s.Max != 5 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("expected sample std %f, got %f", math.Sqrt(2.5), s.StdDev)
	}
	if s.Amplitude() != 2 {
		t.Errorf("expected amplitude 2, got %f", s.Amplitude())
	}

	if (Summary(nil) != Stats{}) {
		t.Error("expected zero stats for empty input")
	}
	if one := Summary([]float64{7}); one.StdDev != 0 || one.Mean != 7 {
		t.Errorf("unexpected single-sample summary %+v", one)
	}
}

func TestDetrend(t *testing.T) {
	const dt, n = 0.01, 1000
	data := sine(1, dt, n)
	for i := range data {
		data[i] += 0.05 * float64(i)
	}

	flat := Detrend(data)
	if got := DominantFrequency(flat, dt); math.Abs(got-1) > 1/(dt*n) {
		t.Errorf("detrended frequency = %f, want 1", got)
	}

	line := Detrend([]float64{1, 3, 5, 7})
	for i, v := range line {
		if math.Abs(v) > 1e-12 {
			t.Errorf("residual %d = %g, want 0", i, v)
		}
	}

	if got := Detrend([]float64{4}); len(got) != 1 || got[0] != 4 {
		t.Errorf("single sample = %v", got)
	}
}
