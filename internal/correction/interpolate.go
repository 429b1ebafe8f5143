package correction

import "math"

// interpolateLinear fills NaN cells in place by positional linear
// interpolation between the nearest finite neighbors. Leading and trailing
// runs, which have only one neighbor, are filled with that neighbor's value.
func interpolateLinear(values []float64) {
	n := len(values)
	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if prev == -1 && i > 0 {
			for j := 0; j < i; j++ {
				values[j] = values[i]
			}
		} else if prev >= 0 && i-prev > 1 {
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / span
				values[j] = values[prev] + (values[i]-values[prev])*frac
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < n; j++ {
			values[j] = values[prev]
		}
	}
}

// interpolateTime fills NaN cells in place by linear interpolation weighted by
// the time axis. Edge runs are filled with the nearest finite value, matching
// interpolateLinear.
func interpolateTime(values, times []float64) {
	n := len(values)
	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if prev == -1 && i > 0 {
			for j := 0; j < i; j++ {
				values[j] = values[i]
			}
		} else if prev >= 0 && i-prev > 1 {
			span := times[i] - times[prev]
			for j := prev + 1; j < i; j++ {
				frac := (times[j] - times[prev]) / span
				values[j] = values[prev] + (values[i]-values[prev])*frac
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < n; j++ {
			values[j] = values[prev]
		}
	}
}

// timeAxisUsable reports whether the time axis can drive time-weighted
// interpolation: every timestamp finite and strictly increasing.
func timeAxisUsable(times []float64) bool {
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return false
		}
		if i > 0 && t <= times[i-1] {
			return false
		}
	}
	return true
}

// linspace returns num points evenly spaced from start to stop inclusive.
// A single point collapses to start.
func linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
