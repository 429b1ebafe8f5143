// Package loader parses raw Seatek sensor text files into correction tables.
//
// Raw files are whitespace-delimited, headerless, one sample per line, with
// optional # comments and blank lines. Columns are named automatically:
// the first becomes "Time (Seconds)", the rest "Value2".."ValueN".
package loader

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"seatekcli/internal/correction"
)

// TimeColumnName is assigned to the first column of a raw sensor file.
const TimeColumnName = "Time (Seconds)"

// Loader reads raw sensor files from disk.
type Loader struct {
	logger *slog.Logger
}

// New creates a loader. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile parses one raw sensor file into a table. Comment-only or empty
// files produce an empty table, not an error. Cells that fail numeric parsing
// inside an otherwise numeric column become missing markers; a column whose
// cells are predominantly non-numeric is kept as text.
func (l *Loader) LoadFile(path string) (*correction.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sensor file: %w", err)
	}
	defer file.Close()

	var rows [][]string
	width := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
		if len(fields) > width {
			width = len(fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sensor file: %w", err)
	}

	if len(rows) == 0 {
		l.logger.Warn("sensor file is empty or comments only", "path", path)
		return &correction.Table{}, nil
	}

	table, err := buildTable(rows, width)
	if err != nil {
		return nil, fmt.Errorf("parse sensor file %s: %w", path, err)
	}
	l.logger.Info("loaded raw sensor data",
		"path", path,
		"rows", table.Len(),
		"columns", table.ColumnNames())
	return table, nil
}

// buildTable turns ragged string rows into named columns. Short rows are
// padded with missing cells.
func buildTable(rows [][]string, width int) (*correction.Table, error) {
	cols := make([]*correction.Column, 0, width)
	for c := 0; c < width; c++ {
		cells := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				cells[r] = row[c]
			}
		}
		cols = append(cols, buildColumn(columnName(c), cells))
	}
	return correction.NewTable(cols...)
}

// columnName reproduces the historical raw-file naming: the first column is
// the time axis and value columns count from 2.
func columnName(index int) string {
	if index == 0 {
		return TimeColumnName
	}
	return fmt.Sprintf("Value%d", index+1)
}

// buildColumn coerces cells to numbers when every non-blank cell parses,
// otherwise keeps the column as text.
func buildColumn(name string, cells []string) *correction.Column {
	values := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if cell == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}
	if numeric {
		return correction.NumericColumn(name, values)
	}
	return correction.TextColumn(name, cells)
}
