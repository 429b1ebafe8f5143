package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRiverMileCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "river_miles.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRiverMileMap(t *testing.T) {
	path := writeRiverMileCSV(t, "SENSOR_ID,RIVER_MILE\n26,54.0\n27,54.0\n31,68.5\n")

	rm, err := LoadRiverMileMap(path)
	require.NoError(t, err)

	assert.Equal(t, []int{26, 27, 31}, rm.Sensors())

	mile, ok := rm.Mile(31)
	assert.True(t, ok)
	assert.Equal(t, 68.5, mile)

	_, ok = rm.Mile(99)
	assert.False(t, ok)
}

func TestLoadRiverMileMap_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"missing columns", "ID,MILE\n26,54.0\n"},
		{"bad sensor id", "SENSOR_ID,RIVER_MILE\nx,54.0\n"},
		{"bad river mile", "SENSOR_ID,RIVER_MILE\n26,low\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRiverMileCSV(t, tt.contents)
			_, err := LoadRiverMileMap(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadRiverMileMap(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSensorsForMiles(t *testing.T) {
	rm := &RiverMileMap{miles: map[int]float64{26: 54.0, 27: 54.0, 31: 68.5}}

	assert.Equal(t, []int{26, 27}, rm.SensorsForMiles([]float64{54.0}))
	assert.Equal(t, []int{26, 27, 31}, rm.SensorsForMiles([]float64{54.0, 68.5}))
	assert.Empty(t, rm.SensorsForMiles([]float64{12.0}))
}
