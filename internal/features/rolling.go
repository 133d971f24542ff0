// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features // import "github.com/fleetpulse/maintenance/internal/features"

import "math"

// Epsilon guards divisions by near-zero denominators in ratio features.
const Epsilon = 1e-6

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// SampleStdDev returns the sample (n-1) standard deviation, 0 when fewer
// than two values are present.
func SampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := Mean(vals)
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)-1))
}

// Slope returns the least-squares linear slope of vals against their
// indices 0..n-1, per sample. Fewer than two points has no trend.
func Slope(vals []float64) float64 {
	n := float64(len(vals))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range vals {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if math.Abs(denom) < Epsilon {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rollingSlope computes the least-squares slope over a trailing window of
// size w for each position. Positions without a full window are NaN, to be
// filled by fillSeries. Maintains running sums so the whole series is O(n).
func rollingSlope(vals []float64, w int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		out[i] = math.NaN()
	}
	if w < 2 || len(vals) < w {
		return out
	}
	// x values are absolute indices; the slope is invariant to shifting x,
	// so the window's sums can slide without re-centering.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range vals {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		if i >= w {
			xo := float64(i - w)
			yo := vals[i-w]
			sumX -= xo
			sumY -= yo
			sumXY -= xo * yo
			sumXX -= xo * xo
		}
		if i >= w-1 {
			n := float64(w)
			denom := n*sumXX - sumX*sumX
			if math.Abs(denom) < Epsilon {
				out[i] = 0
			} else {
				out[i] = (n*sumXY - sumX*sumY) / denom
			}
		}
	}
	return out
}

// rollingMean computes the trailing-window mean for each position; NaN
// where the window is incomplete.
func rollingMean(vals []float64, w int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		out[i] = math.NaN()
	}
	if w < 1 || len(vals) < w {
		return out
	}
	var sum float64
	for i, v := range vals {
		sum += v
		if i >= w {
			sum -= vals[i-w]
		}
		if i >= w-1 {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// fillSeries resolves NaN gaps left by incomplete rolling windows:
// forward-fill, then backward-fill, then zero. Row positions are preserved
// so the engineered window keeps its original row count.
func fillSeries(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = 0
		}
	}
	return out
}
