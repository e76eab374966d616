package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Oscillation looks for a periodic component in a residual history, the
// usual sign of a stalled outer loop. The log10 residuals are detrended
// with a linear fit, and the dominant FFT bin gives the period in
// iterations. Strength is that bin's share of the total power, in [0, 1].
// Histories shorter than eight usable samples give zeros.
func Oscillation(residuals []float64) (period, strength float64) {
	xs := make([]float64, 0, len(residuals))
	ys := make([]float64, 0, len(residuals))
	for i, r := range residuals {
		if r > 0 && !math.IsInf(r, 0) {
			xs = append(xs, float64(i))
			ys = append(ys, math.Log10(r))
		}
	}
	n := len(ys)
	if n < 8 {
		return 0, 0
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	for i := range ys {
		ys[i] -= alpha + beta*xs[i]
	}

	spec := fft.FFTReal(ys)
	var total, peak float64
	peakBin := 0
	for k := 1; k <= n/2; k++ {
		p := cmplx.Abs(spec[k])
		p *= p
		total += p
		if p > peak {
			peak, peakBin = p, k
		}
	}
	if total == 0 || peakBin == 0 {
		return 0, 0
	}
	return float64(n) / float64(peakBin), peak / total
}
