package files

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// mileTolerance absorbs float rounding when matching river miles.
const mileTolerance = 1e-6

// RiverMileMap associates sensor series IDs with river-mile markers.
type RiverMileMap struct {
	miles map[int]float64
}

// LoadRiverMileMap reads a CSV file with a SENSOR_ID,RIVER_MILE header and
// one row per sensor.
func LoadRiverMileMap(path string) (*RiverMileMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open river mile map: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read river mile map %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("river mile map %s is empty", path)
	}

	header := records[0]
	idCol, mileCol := -1, -1
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "SENSOR_ID":
			idCol = i
		case "RIVER_MILE":
			mileCol = i
		}
	}
	if idCol < 0 || mileCol < 0 {
		return nil, fmt.Errorf("river mile map %s missing SENSOR_ID or RIVER_MILE column", path)
	}

	miles := make(map[int]float64)
	for line, rec := range records[1:] {
		if idCol >= len(rec) || mileCol >= len(rec) {
			return nil, fmt.Errorf("river mile map %s: short row %d", path, line+2)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idCol]))
		if err != nil {
			return nil, fmt.Errorf("river mile map %s row %d: invalid sensor id %q", path, line+2, rec[idCol])
		}
		mile, err := strconv.ParseFloat(strings.TrimSpace(rec[mileCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("river mile map %s row %d: invalid river mile %q", path, line+2, rec[mileCol])
		}
		miles[id] = mile
	}
	return &RiverMileMap{miles: miles}, nil
}

// Sensors returns all sensor IDs in ascending order.
func (m *RiverMileMap) Sensors() []int {
	ids := make([]int, 0, len(m.miles))
	for id := range m.miles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SensorsForMiles returns the sensors located at any of the given river
// miles, in ascending order.
func (m *RiverMileMap) SensorsForMiles(riverMiles []float64) []int {
	var ids []int
	for id, mile := range m.miles {
		for _, want := range riverMiles {
			if math.Abs(mile-want) < mileTolerance {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// Mile returns the river mile for a sensor, with ok reporting whether the
// sensor is in the map.
func (m *RiverMileMap) Mile(sensor int) (float64, bool) {
	mile, ok := m.miles[sensor]
	return mile, ok
}
