package correction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatWithSpike builds n evenly spaced samples at the base value with a single
// spike at the given position.
func flatWithSpike(t *testing.T, n int, base, spike float64, at int) *Table {
	t.Helper()
	times := make([]float64, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
		values[i] = base
	}
	values[at] = spike
	return mustTable(t, NumericColumn("t", times), NumericColumn("v", values))
}

func TestOutlierDetector(t *testing.T) {
	t.Run("fewer rows than window yields no findings", func(t *testing.T) {
		tbl := mustTable(t, NumericColumn("t", []float64{0, 1}), NumericColumn("v", []float64{1, 100}))
		detector := &OutlierDetector{ValueColumn: "v", WindowSize: 5, Threshold: 3}
		assert.Empty(t, detector.Detect(tbl))
	})

	t.Run("flags exactly the spiked sample", func(t *testing.T) {
		tbl := flatWithSpike(t, 10, 10, 1000, 5)
		detector := &OutlierDetector{ValueColumn: "v", WindowSize: 5, Threshold: 3}
		assert.Equal(t, []int{5}, detector.Detect(tbl))
	})

	t.Run("boundary rows are never flagged", func(t *testing.T) {
		tbl := flatWithSpike(t, 10, 10, 1000, 0)
		detector := &OutlierDetector{ValueColumn: "v", WindowSize: 5, Threshold: 3}
		assert.Empty(t, detector.Detect(tbl), "spike at the edge has no full centered window")
	})

	t.Run("modest deviations below threshold are kept", func(t *testing.T) {
		values := []float64{10, 11, 10, 9, 10, 11, 10, 9, 10, 11}
		times := make([]float64, len(values))
		for i := range times {
			times[i] = float64(i)
		}
		tbl := mustTable(t, NumericColumn("t", times), NumericColumn("v", values))
		detector := &OutlierDetector{ValueColumn: "v", WindowSize: 5, Threshold: 3}
		assert.Empty(t, detector.Detect(tbl))
	})
}

func TestOutlierCorrectorMedian(t *testing.T) {
	tbl := flatWithSpike(t, 10, 10, 1000, 5)
	corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 5, Method: OutlierMethodMedian}
	result := corrector.Correct(tbl, []int{5})

	assert.InDelta(t, 10.0, result.Values("v")[5], 1e-9)
	assert.Equal(t, 1000.0, tbl.Values("v")[5], "input table is untouched")
}

func TestOutlierCorrectorMean(t *testing.T) {
	tbl := mustTable(t,
		NumericColumn("t", []float64{0, 1, 2, 3, 4}),
		NumericColumn("v", []float64{8, 12, 500, 8, 12}),
	)
	corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 5, Method: OutlierMethodMean}
	result := corrector.Correct(tbl, []int{2})
	assert.InDelta(t, 10.0, result.Values("v")[2], 1e-9)
}

func TestOutlierCorrectorRemove(t *testing.T) {
	tbl := flatWithSpike(t, 10, 10, 1000, 5)
	corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 5, Method: OutlierMethodRemove}
	result := corrector.Correct(tbl, []int{5})

	got := result.Values("v")
	orig := tbl.Values("v")
	for i := range got {
		if i == 5 {
			assert.True(t, math.IsNaN(got[i]), "flagged position becomes missing")
			continue
		}
		assert.Equal(t, orig[i], got[i], "non-flagged values are bit-identical")
	}
}

func TestOutlierCorrectorInterpolate(t *testing.T) {
	tbl := mustTable(t,
		NumericColumn("t", []float64{0, 1, 2, 3}),
		NumericColumn("v", []float64{2, 999, 6, 8}),
	)
	corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 3, Method: OutlierMethodInterpolate}
	result := corrector.Correct(tbl, []int{1})
	assert.InDelta(t, 4.0, result.Values("v")[1], 1e-9)
}

func TestOutlierCorrectorSkipsWhenNoNeighbors(t *testing.T) {
	// Every position in the window is flagged, so no replacement exists.
	tbl := mustTable(t,
		NumericColumn("t", []float64{0, 1, 2}),
		NumericColumn("v", []float64{100, 200, 300}),
	)
	corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 5, Method: OutlierMethodMedian}
	result := corrector.Correct(tbl, []int{0, 1, 2})
	assert.Equal(t, tbl.Values("v"), result.Values("v"))
}

func TestOutlierCorrectorInvalidMethod(t *testing.T) {
	tbl := flatWithSpike(t, 10, 10, 1000, 5)
	corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 5, Method: OutlierMethodUnknown}
	result := corrector.Correct(tbl, []int{5})
	assert.Equal(t, tbl.Values("v"), result.Values("v"), "unknown method is a no-op, not a crash")
}

// The replacement window excludes every flagged position, so median/mean
// correction must not depend on the order the finding set is processed in.
func TestOutlierCorrectorOrderIndependent(t *testing.T) {
	build := func() *Table {
		values := make([]float64, 20)
		times := make([]float64, 20)
		for i := range values {
			times[i] = float64(i)
			values[i] = 10
		}
		values[6] = 500
		values[8] = 600
		return mustTable(t, NumericColumn("t", times), NumericColumn("v", values))
	}

	for _, method := range []OutlierMethod{OutlierMethodMedian, OutlierMethodMean} {
		corrector := &OutlierCorrector{ValueColumn: "v", WindowSize: 5, Method: method}
		forward := corrector.Correct(build(), []int{6, 8})
		backward := corrector.Correct(build(), []int{8, 6})
		require.Equal(t, forward.Values("v"), backward.Values("v"), "method %s", method)
	}
}
