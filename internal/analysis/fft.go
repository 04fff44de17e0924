package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k|^2 / n for k in [0, n/2] of the mean-removed
// series. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	spec := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(spec[i])
		ps[i] = a * a / float64(n)
	}
	return ps
}

// DominantPeriod returns the period in samples of the strongest non-zero
// frequency and its power. It returns 0, 0 for constant or too short input.
func DominantPeriod(data []float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}

	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[best] || best == 0 {
			best = k
		}
	}
	if ps[best] <= 1e-12 {
		return 0, 0
	}
	return float64(len(data)) / float64(best), ps[best]
}
