package files

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("0 1.0\n"), 0o644))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveSeries_ExplicitList(t *testing.T) {
	d := NewDiscovery(t.TempDir(), discardLogger())

	series, err := d.ResolveSeries("27, 26,27", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{26, 27}, series)
}

func TestResolveSeries_InvalidList(t *testing.T) {
	d := NewDiscovery(t.TempDir(), discardLogger())

	_, err := d.ResolveSeries("26,abc", nil, nil)
	assert.Error(t, err)
}

func TestResolveSeries_AllFromDirectoryScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "S26_Y01.txt")
	writeFile(t, dir, "S26_Y02.txt")
	writeFile(t, dir, "S31_Y01.txt")
	writeFile(t, dir, "notes.txt")

	d := NewDiscovery(dir, discardLogger())
	series, err := d.ResolveSeries("all", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{26, 31}, series)
}

func TestResolveSeries_AllFromRiverMileMap(t *testing.T) {
	rm := &RiverMileMap{miles: map[int]float64{26: 54.0, 27: 54.0, 31: 68.5}}
	d := NewDiscovery(t.TempDir(), discardLogger())

	series, err := d.ResolveSeries("all", nil, rm)
	require.NoError(t, err)
	assert.Equal(t, []int{26, 27, 31}, series)
}

func TestResolveSeries_FilteredByRiverMiles(t *testing.T) {
	rm := &RiverMileMap{miles: map[int]float64{26: 54.0, 27: 54.0, 31: 68.5}}
	d := NewDiscovery(t.TempDir(), discardLogger())

	series, err := d.ResolveSeries("all", []float64{54.0}, rm)
	require.NoError(t, err)
	assert.Equal(t, []int{26, 27}, series)

	series, err = d.ResolveSeries("26,31", []float64{54.0}, rm)
	require.NoError(t, err)
	assert.Equal(t, []int{26}, series)
}

func TestFindFiles_YearIndexing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "S26_Y01.txt")
	writeFile(t, dir, "S26_Y03.txt")
	writeFile(t, dir, "S31_Y02.txt")

	d := NewDiscovery(dir, discardLogger())
	found := d.FindFiles([]int{26, 31}, 1995, 1997)

	require.Len(t, found, 3)
	assert.Equal(t, SensorFile{Series: 26, Year: 1995, YearIndex: 1,
		Name: "S26_Y01.txt", Path: filepath.Join(dir, "S26_Y01.txt")}, found[0])
	assert.Equal(t, SensorFile{Series: 26, Year: 1997, YearIndex: 3,
		Name: "S26_Y03.txt", Path: filepath.Join(dir, "S26_Y03.txt")}, found[1])
	assert.Equal(t, SensorFile{Series: 31, Year: 1996, YearIndex: 2,
		Name: "S31_Y02.txt", Path: filepath.Join(dir, "S31_Y02.txt")}, found[2])
}

func TestFindFiles_NoneFound(t *testing.T) {
	d := NewDiscovery(t.TempDir(), discardLogger())
	assert.Empty(t, d.FindFiles([]int{26}, 1995, 1996))
}
