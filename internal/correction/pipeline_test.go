package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	var cfg Config
	cfg.Normalize()
	assert.Equal(t, DefaultConfig(), cfg)

	cfg = Config{WindowSize: 7, OutlierMethod: OutlierMethodRemove}
	cfg.Normalize()
	assert.Equal(t, 7, cfg.WindowSize)
	assert.Equal(t, OutlierMethodRemove, cfg.OutlierMethod)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Equal(t, DefaultTimeColumn, cfg.TimeColumn)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative window size", func(c *Config) { c.WindowSize = -1 }},
		{"negative threshold", func(c *Config) { c.Threshold = -2 }},
		{"negative gap factor", func(c *Config) { c.GapThresholdFactor = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestNewPipelineRejectsInvalidConfig(t *testing.T) {
	_, err := NewPipeline(Config{WindowSize: -3}, nil)
	assert.Error(t, err)
}

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	cfg.TimeColumn = "t"
	p, err := NewPipeline(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestPipelineColumnResolution(t *testing.T) {
	t.Run("missing time column aborts", func(t *testing.T) {
		tbl := mustTable(t, NumericColumn("v", []float64{1, 2, 3}))
		_, err := newTestPipeline(t, Config{}).Process(tbl)
		assert.Error(t, err)
	})

	t.Run("unconvertible text time column aborts", func(t *testing.T) {
		tbl := mustTable(t,
			TextColumn("t", []string{"not-a-date", "also-not"}),
			NumericColumn("v", []float64{1, 2}),
		)
		_, err := newTestPipeline(t, Config{}).Process(tbl)
		assert.Error(t, err)
	})

	t.Run("datetime time column converts to elapsed seconds", func(t *testing.T) {
		tbl := mustTable(t,
			TextColumn("t", []string{"1970-01-01", "1970-01-03", "1970-01-02"}),
			NumericColumn("v", []float64{1, 3, 2}),
		)
		result, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 86400, 172800}, result.Values("t"), "sorted ascending after conversion")
		assert.Equal(t, []float64{1, 2, 3}, result.Values("v"))
	})

	t.Run("no numeric value column aborts", func(t *testing.T) {
		tbl := mustTable(t,
			NumericColumn("t", []float64{0, 1}),
			TextColumn("label", []string{"a", "b"}),
		)
		_, err := newTestPipeline(t, Config{}).Process(tbl)
		assert.Error(t, err)
	})

	t.Run("configured non-numeric value column aborts", func(t *testing.T) {
		tbl := mustTable(t,
			NumericColumn("t", []float64{0, 1}),
			TextColumn("v", []string{"a", "b"}),
		)
		_, err := newTestPipeline(t, Config{ValueColumn: "v"}).Process(tbl)
		assert.Error(t, err)
	})

	t.Run("auto-detects the first non-time numeric column", func(t *testing.T) {
		values := make([]float64, 10)
		times := make([]float64, 10)
		other := make([]float64, 10)
		for i := range values {
			times[i] = float64(i)
			values[i] = 10
			other[i] = 3
		}
		values[5] = 1000
		tbl := mustTable(t,
			NumericColumn("t", times),
			NumericColumn("Value2", values),
			NumericColumn("Value3", other),
		)
		result, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, result.Values("Value2")[5], 1e-9, "spike in the auto-detected column corrected")
		assert.Equal(t, other, result.Values("Value3"), "other columns untouched")
	})
}

func TestPipelineEndToEnd(t *testing.T) {
	t.Run("outlier scenario", func(t *testing.T) {
		tbl := flatWithSpike(t, 10, 10, 1000, 5)
		result, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		for i, v := range result.Values("v") {
			assert.InDelta(t, 10.0, v, 1e-9, "row %d", i)
		}
	})

	t.Run("gap scenario", func(t *testing.T) {
		tbl := mustTable(t,
			NumericColumn("t", []float64{0, 1, 2, 3, 10, 11}),
			NumericColumn("v", []float64{0, 2, 4, 6, 20, 22}),
		)
		result, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		require.Equal(t, 12, result.Len())
		times := result.Values("t")
		for i := 1; i < len(times); i++ {
			assert.InDelta(t, 1.0, times[i]-times[i-1], 1e-9)
		}
	})

	t.Run("jump scenario", func(t *testing.T) {
		tbl := levelShift(t, 20, 0, 5)
		result, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		got := result.Values("v")
		assert.InDelta(t, Median(got[:20]), Median(got[20:]), 0.2,
			"post-jump values realigned with the pre-jump baseline")
	})

	t.Run("unsorted input is processed in time order", func(t *testing.T) {
		tbl := mustTable(t,
			NumericColumn("t", []float64{2, 0, 1}),
			NumericColumn("v", []float64{12, 10, 11}),
		)
		result, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2}, result.Values("t"))
		assert.Equal(t, []float64{10, 11, 12}, result.Values("v"))
	})

	t.Run("idempotent on clean data", func(t *testing.T) {
		times := make([]float64, 20)
		values := make([]float64, 20)
		for i := range times {
			times[i] = float64(i)
			values[i] = 10
		}
		tbl := mustTable(t, NumericColumn("t", times), NumericColumn("v", values))
		p := newTestPipeline(t, Config{})

		once, err := p.Process(tbl)
		require.NoError(t, err)
		twice, err := p.Process(once)
		require.NoError(t, err)

		assert.Equal(t, once.Values("t"), twice.Values("t"))
		assert.Equal(t, once.Values("v"), twice.Values("v"))
	})

	t.Run("input table is never mutated", func(t *testing.T) {
		tbl := flatWithSpike(t, 10, 10, 1000, 5)
		_, err := newTestPipeline(t, Config{}).Process(tbl)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, tbl.Values("v")[5])
	})
}

func TestMethodParsing(t *testing.T) {
	gm, err := ParseGapMethod("time")
	require.NoError(t, err)
	assert.Equal(t, GapMethodTime, gm)
	_, err = ParseGapMethod("spline")
	assert.Error(t, err)

	om, err := ParseOutlierMethod("interpolate")
	require.NoError(t, err)
	assert.Equal(t, OutlierMethodInterpolate, om)
	_, err = ParseOutlierMethod("drop")
	assert.Error(t, err)

	jm, err := ParseJumpMethod("offset")
	require.NoError(t, err)
	assert.Equal(t, JumpMethodOffset, jm)
	_, err = ParseJumpMethod("scale")
	assert.Error(t, err)

	assert.Equal(t, "median", OutlierMethodMedian.String())
	assert.Equal(t, "unknown", OutlierMethodUnknown.String())
}
