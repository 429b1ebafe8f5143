// Package files locates raw Seatek sensor data files and maps sensors to
// river-mile markers.
package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SensorFile identifies one raw data file for a series and year.
type SensorFile struct {
	Series    int
	Year      int
	YearIndex int
	Name      string
	Path      string
}

// sensorFilePattern matches raw file names such as S26_Y01.txt.
var sensorFilePattern = regexp.MustCompile(`^S(\d+)_Y(\d+)\.txt$`)

// Discovery resolves series selections and locates their data files under a
// base directory.
type Discovery struct {
	dataDir string
	logger  *slog.Logger
}

// NewDiscovery creates a discovery rooted at the given data directory.
func NewDiscovery(dataDir string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{dataDir: dataDir, logger: logger}
}

// ResolveSeries turns a series selection into a sorted list of series IDs.
// The selection is either "all" or a comma-separated list of IDs. "all"
// resolves from the river-mile map when one is available, otherwise by
// scanning the data directory. When river miles are given and a map is
// available, the result is filtered to sensors at those miles.
func (d *Discovery) ResolveSeries(selection string, riverMiles []float64, rm *RiverMileMap) ([]int, error) {
	var series []int

	if strings.EqualFold(strings.TrimSpace(selection), "all") {
		switch {
		case rm != nil && len(riverMiles) > 0:
			series = rm.SensorsForMiles(riverMiles)
			d.logger.Info("selected series from river miles",
				"river_miles", riverMiles, "series", series)
		case rm != nil:
			series = rm.Sensors()
			d.logger.Info("selected all series from river mile map", "series", series)
		default:
			var err error
			series, err = d.scanSeries()
			if err != nil {
				return nil, err
			}
			d.logger.Info("found series by scanning data directory", "series", series)
			if len(riverMiles) > 0 {
				d.logger.Warn("river miles provided but no map to filter by, cannot filter")
			}
		}
	} else {
		for _, part := range strings.Split(selection, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid series selection %q: %w", selection, err)
			}
			series = append(series, id)
		}
		d.logger.Info("processing specified series", "series", series)
		if rm != nil && len(riverMiles) > 0 {
			series = intersect(series, rm.SensorsForMiles(riverMiles))
			d.logger.Info("filtered specified series by river miles",
				"river_miles", riverMiles, "series", series)
		} else if len(riverMiles) > 0 {
			d.logger.Warn("river miles provided but no map to filter by, cannot filter")
		}
	}

	if len(series) == 0 {
		d.logger.Warn("no series selected for processing based on criteria")
	}
	sort.Ints(series)
	return dedupe(series), nil
}

// FindFiles locates existing data files for the given series over an
// inclusive year range. The year index restarts at 1 for each series at the
// start year. Missing files are logged and skipped.
func (d *Discovery) FindFiles(series []int, startYear, endYear int) []SensorFile {
	var found []SensorFile
	for _, s := range series {
		for y := startYear; y <= endYear; y++ {
			yearIndex := y - startYear + 1
			name := fmt.Sprintf("S%d_Y%02d.txt", s, yearIndex)
			path := filepath.Join(d.dataDir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				found = append(found, SensorFile{
					Series:    s,
					Year:      y,
					YearIndex: yearIndex,
					Name:      name,
					Path:      path,
				})
				d.logger.Debug("found matching file", "path", path)
			} else {
				d.logger.Warn("expected file not found", "path", path)
			}
		}
	}
	if len(found) == 0 {
		d.logger.Warn("no data files found matching pattern", "data_dir", d.dataDir)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Series != found[j].Series {
			return found[i].Series < found[j].Series
		}
		return found[i].Year < found[j].Year
	})
	d.logger.Info("located data files to process", "count", len(found))
	return found
}

// scanSeries extracts series IDs from file names in the data directory.
func (d *Discovery) scanSeries() ([]int, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return nil, fmt.Errorf("scan data directory %s: %w", d.dataDir, err)
	}
	seen := make(map[int]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := sensorFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[id] = true
	}
	series := make([]int, 0, len(seen))
	for id := range seen {
		series = append(series, id)
	}
	sort.Ints(series)
	return series, nil
}

func intersect(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []int
	for _, v := range a {
		if inB[v] {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(sorted []int) []int {
	var out []int
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
