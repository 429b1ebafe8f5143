package correction

import (
	"math"
	"sort"
)

// madScaleFactor rescales a median absolute deviation so it approximates one
// standard deviation under normality.
const madScaleFactor = 1.4826

// Median returns the median of values, ignoring NaN cells. It returns NaN
// when no finite value remains.
func Median(values []float64) float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	n := len(finite)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(finite)
	if n%2 == 1 {
		return finite[n/2]
	}
	return (finite[n/2-1] + finite[n/2]) / 2
}

// Mean returns the arithmetic mean of values, ignoring NaN cells. It returns
// NaN when no finite value remains.
func Mean(values []float64) float64 {
	sum, count := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// windowStat applies stat to every full window of the given width and returns
// one result per input position. Positions without a full window, and windows
// containing a NaN cell, yield NaN. When centered, the window for position i
// spans [i-w/2, i-w/2+w); otherwise it trails, spanning [i-w+1, i].
func windowStat(values []float64, window int, centered bool, stat func([]float64) float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || window > n {
		return out
	}
	for i := 0; i < n; i++ {
		lo := i - window + 1
		if centered {
			lo = i - window/2
		}
		hi := lo + window
		if lo < 0 || hi > n {
			continue
		}
		win := values[lo:hi]
		if hasNaN(win) {
			continue
		}
		out[i] = stat(win)
	}
	return out
}

// RollingMedian computes a centered rolling median of the given width.
func RollingMedian(values []float64, window int) []float64 {
	return windowStat(values, window, true, Median)
}

// RollingMAD computes a centered rolling median absolute deviation of the
// given width.
func RollingMAD(values []float64, window int) []float64 {
	return windowStat(values, window, true, func(win []float64) float64 {
		med := Median(win)
		devs := make([]float64, len(win))
		for i, v := range win {
			devs[i] = math.Abs(v - med)
		}
		return Median(devs)
	})
}

// RollingMean computes a trailing rolling mean of the given width.
func RollingMean(values []float64, window int) []float64 {
	return windowStat(values, window, false, Mean)
}

// RollingStd computes a trailing rolling sample standard deviation of the
// given width. Windows narrower than two cells yield NaN.
func RollingStd(values []float64, window int) []float64 {
	return windowStat(values, window, false, sampleStd)
}

func sampleStd(win []float64) float64 {
	n := len(win)
	if n < 2 {
		return math.NaN()
	}
	m := Mean(win)
	ss := 0.0
	for _, v := range win {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
