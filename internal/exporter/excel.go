package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"seatekcli/internal/correction"
)

// ExcelWriter provides Excel workbook export functionality.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteTable writes a sample table to a single-sheet workbook. NaN cells are
// left blank.
func (w *ExcelWriter) WriteTable(path, sheet string, t *correction.Table) error {
	w.logger.Info("writing Excel workbook",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", t.Len()))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	names := t.ColumnNames()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for row := 0; row < t.Len(); row++ {
		cells := make([]interface{}, len(names))
		for i, name := range names {
			cells[i] = cellValue(t.Column(name), row)
		}
		anchor, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, anchor, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	return w.save(f, path)
}

// WriteComparison writes a workbook contrasting raw and corrected values,
// aligned by the time column. Rows inserted by gap filling have no raw value.
// flagged marks corrected row positions detected as outliers, keyed by value
// column name.
func (w *ExcelWriter) WriteComparison(path string, raw, corrected *correction.Table, timeColumn string, flagged map[string][]int) error {
	const sheet = "Comparison"

	times := corrected.Values(timeColumn)
	if times == nil {
		return fmt.Errorf("corrected table has no numeric time column %q", timeColumn)
	}

	rawRowByTime := make(map[float64]int)
	for i, tv := range raw.Values(timeColumn) {
		rawRowByTime[tv] = i
	}

	valueCols := valueColumns(corrected, timeColumn)

	flaggedRows := make(map[int]bool)
	for _, rows := range flagged {
		for _, r := range rows {
			flaggedRows[r] = true
		}
	}

	header := []interface{}{timeColumn}
	for _, name := range valueCols {
		header = append(header, "Raw_"+name, "Corrected_"+name)
	}
	header = append(header, "Outlier_Flag")

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for row := 0; row < corrected.Len(); row++ {
		cells := []interface{}{floatOrNil(times[row])}
		rawRow, haveRaw := rawRowByTime[times[row]]
		for _, name := range valueCols {
			if haveRaw {
				if rv := raw.Values(name); rv != nil && rawRow < len(rv) {
					cells = append(cells, floatOrNil(rv[rawRow]))
				} else {
					cells = append(cells, nil)
				}
			} else {
				cells = append(cells, nil)
			}
			cells = append(cells, floatOrNil(corrected.Values(name)[row]))
		}
		cells = append(cells, flaggedRows[row])

		anchor, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, anchor, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	w.logger.Info("writing comparison workbook",
		slog.String("path", path),
		slog.Int("rows", corrected.Len()),
		slog.Int("flagged", len(flaggedRows)))

	return w.save(f, path)
}

func (w *ExcelWriter) save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func valueColumns(t *correction.Table, timeColumn string) []string {
	var names []string
	for _, name := range t.NumericColumnNames() {
		if name != timeColumn {
			names = append(names, name)
		}
	}
	return names
}

func cellValue(c *correction.Column, row int) interface{} {
	if c.Kind == correction.KindText {
		return c.Text[row]
	}
	return floatOrNil(c.Float[row])
}

func floatOrNil(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
