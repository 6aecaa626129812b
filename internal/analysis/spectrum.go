package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// data with its mean removed. The result has len(data)/2+1 entries.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeff := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// of a series sampled every dt seconds, or 0 if the series does not move.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 2 || dt <= 0 {
		return 0
	}

	ps := PowerSpectrum(data)
	best, peak := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peak {
			best, peak = i, ps[i]
		}
	}
	if best == 0 {
		return 0
	}

	fft := fourier.NewFFT(len(data))
	return fft.Freq(best) / dt
}

// Detrend subtracts the least-squares line from data, such as the steady
// drift of a body riding on a moving center of mass.
func Detrend(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) < 2 {
		copy(out, data)
		return out
	}

	xs := make([]float64, len(data))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, data, nil, false)
	for i, v := range data {
		out[i] = v - (alpha + beta*xs[i])
	}
	return out
}
