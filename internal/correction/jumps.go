package correction

import (
	"log/slog"
	"math"
	"sort"
)

// JumpDetector flags sustained level shifts using a CUSUM of deviations from
// the trailing rolling mean, normalized by the trailing rolling standard
// deviation.
type JumpDetector struct {
	ValueColumn string
	WindowSize  int
	Threshold   float64
	Logger      *slog.Logger
}

// Detect returns the positions where a level shift begins, in ascending
// order. The cumulative sum resets to zero after every flag; the scan is a
// single left-to-right pass with no backtracking. Tables with fewer than
// twice the window size yield an empty result.
func (d *JumpDetector) Detect(t *Table) []int {
	logger := loggerOrDefault(d.Logger)
	values := t.Values(d.ValueColumn)
	n := t.Len()
	if values == nil || n < d.WindowSize*2 {
		logger.Debug("not enough data points for jump detection",
			"rows", n, "required", d.WindowSize*2)
		return nil
	}

	rollingMean := RollingMean(values, d.WindowSize)
	rollingStd := RollingStd(values, d.WindowSize)

	var jumps []int
	cusum := 0.0
	for i := d.WindowSize; i < n; i++ {
		deviation := values[i] - rollingMean[i-1]
		std := rollingStd[i-1]
		normalized := 0.0
		if !math.IsNaN(std) && std > spreadEpsilon && !math.IsNaN(deviation) {
			normalized = deviation / std
		}
		cusum += normalized
		if math.Abs(cusum) > d.Threshold {
			jumps = append(jumps, i)
			cusum = 0
			logger.Debug("jump detected", "index", i, "threshold", d.Threshold)
		}
	}

	if len(jumps) > 0 {
		logger.Info("detected potential jumps",
			"count", len(jumps),
			"window_size", d.WindowSize,
			"threshold", d.Threshold,
			"indices", jumps)
	} else {
		logger.Debug("no jumps detected",
			"window_size", d.WindowSize, "threshold", d.Threshold)
	}
	return jumps
}

// JumpCorrector removes detected level shifts by adding the median difference
// across each jump to every sample from the jump onward.
type JumpCorrector struct {
	ValueColumn string
	WindowSize  int
	Logger      *slog.Logger
}

// Correct returns a new table with the flagged level shifts removed. Jumps
// are processed in ascending order over the progressively corrected values,
// so offsets from earlier jumps compound into the windows of later ones,
// modeling sequential recalibration events. A jump without a full window on
// both sides is logged and skipped.
func (c *JumpCorrector) Correct(t *Table, jumps []int) *Table {
	logger := loggerOrDefault(c.Logger)
	result := t.Copy()
	if len(jumps) == 0 {
		return result
	}
	values := result.Values(c.ValueColumn)
	if values == nil {
		logger.Warn("value column absent or not numeric, skipping jump correction",
			"column", c.ValueColumn)
		return result
	}
	n := len(values)

	ordered := append([]int(nil), jumps...)
	sort.Ints(ordered)

	for _, jumpIdx := range ordered {
		if jumpIdx < c.WindowSize || jumpIdx >= n-c.WindowSize {
			logger.Warn("skipping jump correction: insufficient data around index",
				"index", jumpIdx, "window_size", c.WindowSize)
			continue
		}
		medianBefore := Median(values[jumpIdx-c.WindowSize : jumpIdx])
		medianAfter := Median(values[jumpIdx : jumpIdx+c.WindowSize])
		if math.IsNaN(medianBefore) || math.IsNaN(medianAfter) {
			logger.Warn("skipping jump correction: undefined median in window", "index", jumpIdx)
			continue
		}
		offset := medianBefore - medianAfter
		logger.Info("correcting jump",
			"index", jumpIdx,
			"median_before", medianBefore,
			"median_after", medianAfter,
			"offset", offset)
		for i := jumpIdx; i < n; i++ {
			values[i] += offset
		}
	}

	logger.Info("jump correction complete", "column", c.ValueColumn)
	return result
}
