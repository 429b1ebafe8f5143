package correction

import (
	"log/slog"
	"math"
)

// spreadEpsilon is the smallest rolling spread treated as nonzero. Below it a
// point is judged by its raw deviation from the rolling median instead of a
// z-score.
const spreadEpsilon = 1e-6

// OutlierDetector flags single samples that deviate abnormally from a local
// robust center, using a modified z-score over centered rolling windows.
type OutlierDetector struct {
	ValueColumn string
	WindowSize  int
	Threshold   float64
	Logger      *slog.Logger
}

// Detect returns the positions of all detected outliers in ascending order.
// Positions near either end that lack a full centered window are never
// flagged. Tables with fewer rows than the window yield an empty result.
func (d *OutlierDetector) Detect(t *Table) []int {
	logger := loggerOrDefault(d.Logger)
	values := t.Values(d.ValueColumn)
	n := t.Len()
	if values == nil || n < d.WindowSize {
		logger.Debug("not enough data points for outlier detection",
			"rows", n, "window_size", d.WindowSize)
		return nil
	}

	rollingMedian := RollingMedian(values, d.WindowSize)
	rollingMAD := RollingMAD(values, d.WindowSize)

	var outliers []int
	for i := 0; i < n; i++ {
		med := rollingMedian[i]
		scaledMAD := rollingMAD[i] * madScaleFactor
		if math.IsNaN(med) || math.IsNaN(scaledMAD) {
			continue
		}
		dev := math.Abs(values[i] - med)
		if scaledMAD < spreadEpsilon {
			// Zero local spread: any real deviation is effectively an
			// infinite z-score.
			if dev > spreadEpsilon {
				outliers = append(outliers, i)
			}
			continue
		}
		if dev/scaledMAD > d.Threshold {
			outliers = append(outliers, i)
			logger.Debug("outlier detected",
				"index", i,
				"value", values[i],
				"median", med,
				"scaled_mad", scaledMAD)
		}
	}

	if len(outliers) > 0 {
		logger.Info("detected potential outliers",
			"count", len(outliers),
			"window_size", d.WindowSize,
			"threshold", d.Threshold,
			"indices", outliers)
	} else {
		logger.Debug("no outliers detected",
			"window_size", d.WindowSize, "threshold", d.Threshold)
	}
	return outliers
}

// OutlierCorrector replaces flagged outliers by one of the OutlierMethod
// strategies.
type OutlierCorrector struct {
	ValueColumn string
	WindowSize  int
	Method      OutlierMethod
	Logger      *slog.Logger
}

// Correct returns a new table with the flagged positions corrected. Flagged
// positions are processed in the order given. A flagged position with no
// valid neighbors is logged and left unchanged; an unknown method logs an
// error and returns the copy unmodified.
func (c *OutlierCorrector) Correct(t *Table, outliers []int) *Table {
	logger := loggerOrDefault(c.Logger)
	result := t.Copy()
	if len(outliers) == 0 {
		return result
	}
	values := result.Values(c.ValueColumn)
	if values == nil {
		logger.Warn("value column absent or not numeric, skipping outlier correction",
			"column", c.ValueColumn)
		return result
	}
	n := len(values)
	flagged := make(map[int]bool, len(outliers))
	for _, idx := range outliers {
		flagged[idx] = true
	}

	logger.Info("correcting outliers",
		"count", len(outliers),
		"column", c.ValueColumn,
		"method", c.Method.String())

	switch c.Method {
	case OutlierMethodInterpolate:
		for _, idx := range outliers {
			if idx >= 0 && idx < n {
				values[idx] = math.NaN()
			}
		}
		interpolateLinear(values)
		logger.Info("outliers replaced via linear interpolation")

	case OutlierMethodRemove:
		for _, idx := range outliers {
			if idx >= 0 && idx < n {
				values[idx] = math.NaN()
			}
		}
		logger.Info("outliers replaced with missing markers")

	case OutlierMethodMedian, OutlierMethodMean:
		for _, idx := range outliers {
			if idx < 0 || idx >= n {
				continue
			}
			lo := idx - c.WindowSize/2
			if lo < 0 {
				lo = 0
			}
			hi := idx + c.WindowSize/2 + 1
			if hi > n {
				hi = n
			}
			var neighbors []float64
			for j := lo; j < hi; j++ {
				if j == idx || flagged[j] || math.IsNaN(values[j]) {
					continue
				}
				neighbors = append(neighbors, values[j])
			}
			if len(neighbors) == 0 {
				logger.Warn("cannot calculate replacement for outlier: no valid surrounding points",
					"index", idx)
				continue
			}
			var replacement float64
			if c.Method == OutlierMethodMedian {
				replacement = Median(neighbors)
			} else {
				replacement = Mean(neighbors)
			}
			if math.IsNaN(replacement) {
				logger.Warn("could not compute valid replacement for outlier",
					"index", idx, "method", c.Method.String())
				continue
			}
			logger.Debug("replaced outlier",
				"index", idx, "original", values[idx], "replacement", replacement)
			values[idx] = replacement
		}

	default:
		logger.Error("invalid outlier correction method, no correction applied",
			"method", c.Method.String())
		return result
	}

	logger.Info("outlier correction complete", "column", c.ValueColumn)
	return result
}
