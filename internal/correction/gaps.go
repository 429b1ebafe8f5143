package correction

import (
	"log/slog"
	"math"
	"sort"
)

// GapDetector flags rows that follow an abnormally long sampling interval.
type GapDetector struct {
	TimeColumn      string
	ThresholdFactor float64
	Logger          *slog.Logger
}

// Detect returns the positions of the first sample after each gap, in
// ascending order. A gap is an interval exceeding ThresholdFactor times the
// median interval. Fewer than two rows, no defined intervals, or a
// non-positive median interval all yield an empty result.
func (d *GapDetector) Detect(t *Table) []int {
	logger := loggerOrDefault(d.Logger)
	times := t.Values(d.TimeColumn)
	n := t.Len()
	if times == nil || n < 2 {
		logger.Debug("not enough data points to detect gaps", "rows", n)
		return nil
	}

	diffs := make([]float64, n)
	diffs[0] = math.NaN()
	for i := 1; i < n; i++ {
		diffs[i] = times[i] - times[i-1]
	}

	medianDiff := Median(diffs[1:])
	if math.IsNaN(medianDiff) {
		logger.Debug("no valid time differences to calculate median")
		return nil
	}
	if medianDiff <= 0 {
		logger.Warn("median time difference is non-positive, cannot reliably detect gaps",
			"median_diff", medianDiff)
		return nil
	}

	threshold := d.ThresholdFactor * medianDiff
	var gaps []int
	for i := 1; i < n; i++ {
		if diffs[i] > threshold {
			gaps = append(gaps, i)
		}
	}

	if len(gaps) > 0 {
		logger.Info("detected potential gaps",
			"count", len(gaps),
			"threshold", threshold,
			"median_diff", medianDiff,
			"indices", gaps)
	} else {
		logger.Debug("no gaps detected", "threshold", threshold)
	}
	return gaps
}

// GapCorrector fills detected gaps by inserting rows with evenly spaced
// timestamps and interpolating the value columns across them.
type GapCorrector struct {
	TimeColumn string
	// ValueColumns to interpolate. Empty means every numeric column other
	// than the time column.
	ValueColumns []string
	Method       GapMethod
	Logger       *slog.Logger
}

// Correct returns a new table with the flagged gaps filled. Gaps whose normal
// sampling step cannot be established are logged and skipped. The result is
// sorted ascending by time and grows by the number of inserted rows.
func (c *GapCorrector) Correct(t *Table, gaps []int) *Table {
	logger := loggerOrDefault(c.Logger)
	result := t.Copy()
	if len(gaps) == 0 {
		return result
	}

	valueCols := c.ValueColumns
	if len(valueCols) == 0 {
		for _, name := range result.NumericColumnNames() {
			if name != c.TimeColumn {
				valueCols = append(valueCols, name)
			}
		}
		logger.Debug("auto-detected value columns for gap correction", "columns", valueCols)
	}
	if len(valueCols) == 0 {
		logger.Warn("no numeric value columns found to interpolate for gap correction")
		return result
	}

	if err := result.SortBy(c.TimeColumn); err != nil {
		logger.Warn("cannot sort table for gap correction", "error", err)
		return result
	}

	// Descending order keeps earlier gap positions valid while rows are
	// spliced in.
	ordered := append([]int(nil), gaps...)
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	processed := make(map[int]bool)
	inserted := 0

	for _, gapIdx := range ordered {
		if processed[gapIdx] || gapIdx == 0 {
			continue
		}
		processed[gapIdx] = true

		times := result.Values(c.TimeColumn)
		idxBefore := gapIdx - 1
		idxAfter := gapIdx
		timeBefore := times[idxBefore]
		timeAfter := times[idxAfter]

		var normalStep float64
		switch {
		case idxBefore > 0:
			normalStep = timeBefore - times[idxBefore-1]
		case idxAfter+1 < result.Len():
			normalStep = times[idxAfter+1] - timeAfter
		default:
			logger.Warn("cannot determine normal time step for gap, skipping", "index", gapIdx)
			continue
		}
		if normalStep <= 0 || math.IsNaN(normalStep) {
			logger.Warn("estimated normal time step is non-positive, skipping gap",
				"step", normalStep, "index", gapIdx)
			continue
		}

		missing := int(math.Round((timeAfter-timeBefore)/normalStep)) - 1
		if missing <= 0 {
			logger.Debug("calculated no missing points for gap, skipping", "index", gapIdx)
			continue
		}

		logger.Info("filling gap",
			"index", gapIdx,
			"missing_points", missing,
			"time_before", timeBefore,
			"time_after", timeAfter,
			"step", normalStep)

		newTimes := linspace(timeBefore+normalStep, timeAfter-normalStep, missing)
		if err := result.InsertRows(gapIdx, c.TimeColumn, newTimes); err != nil {
			logger.Warn("failed to insert gap rows, skipping", "index", gapIdx, "error", err)
			continue
		}
		inserted += missing
	}

	method := c.Method
	times := result.Values(c.TimeColumn)
	if method == GapMethodTime && !timeAxisUsable(times) {
		logger.Warn("cannot use time interpolation without a usable time axis, falling back to linear")
		method = GapMethodLinear
	}
	logger.Info("interpolating gap values", "columns", valueCols, "method", method.String())
	for _, name := range valueCols {
		values := result.Values(name)
		if values == nil {
			logger.Warn("value column absent or not numeric, skipping interpolation", "column", name)
			continue
		}
		if method == GapMethodTime {
			interpolateTime(values, times)
		} else {
			interpolateLinear(values)
		}
	}

	logger.Info("gap correction complete", "rows_before", t.Len(), "rows_after", result.Len(),
		"inserted", inserted)
	return result
}
