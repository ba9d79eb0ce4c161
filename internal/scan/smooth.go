package scan

import (
	"log"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/banshee-data/polarscan/internal/units"
)

// smoothWindow is the width of the moving average applied after spline
// evaluation, in buckets.
const smoothWindow = 5

// minSmoothPoints is the minimum number of valid readings required before a
// cubic spline can be fitted.
const minSmoothPoints = 4

// Smooth derives a dense angular profile from a sparse bucket array by
// fitting a cubic spline through the valid (angle, distance) points,
// evaluating it at every bucket angle, and running a moving average over the
// result. Buckets outside the span of the valid readings stay NaN.
//
// Smoothing is best effort: with fewer than minSmoothPoints valid readings,
// or if the fit fails, a copy of the input is returned unchanged with ok
// false, and the caller renders the sparse data instead.
func Smooth(distances []float64, factor float64) ([]float64, bool) {
	out := make([]float64, len(distances))
	copy(out, distances)

	var xs, ys []float64
	for i, d := range distances {
		if math.IsNaN(d) {
			continue
		}
		xs = append(xs, units.Deg2Rad(float64(i)/factor))
		ys = append(ys, d)
	}
	if len(xs) < minSmoothPoints {
		return out, false
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(xs, ys); err != nil {
		log.Printf("smoothing failed, rendering raw scan: %v", err)
		return out, false
	}

	lo, hi := xs[0], xs[len(xs)-1]
	dense := make([]float64, len(distances))
	for i := range dense {
		theta := units.Deg2Rad(float64(i) / factor)
		if theta < lo || theta > hi {
			dense[i] = math.NaN()
			continue
		}
		dense[i] = spline.Predict(theta)
	}

	return movingAverage(dense, smoothWindow), true
}

// movingAverage applies a centered fixed-width mean over the input,
// reflecting at the edges. A NaN anywhere in the window makes the output NaN
// for that bucket.
func movingAverage(in []float64, width int) []float64 {
	n := len(in)
	out := make([]float64, n)
	half := width / 2
	for i := range in {
		sum := 0.0
		for k := -half; k <= half; k++ {
			j := i + k
			// reflect indices back into range
			if j < 0 {
				j = -j - 1
			}
			if j >= n {
				j = 2*n - j - 1
			}
			sum += in[j]
		}
		out[i] = sum / float64(width)
	}
	return out
}
