// pkg/loader/export.go
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// ExportFormat is the snapshot file format
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

// snapshotSheet names the worksheet of an Excel snapshot.
const snapshotSheet = "employee_data"

// FormatForPath picks the snapshot format from the file extension.
func FormatForPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatExcel
	}
	return FormatCSV
}

// SnapshotExporter writes canonical rows to a file with the
// model.EmployeeColumns header.
type SnapshotExporter struct {
	logger *zap.Logger
}

// NewSnapshotExporter creates an exporter.
func NewSnapshotExporter(logger *zap.Logger) *SnapshotExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotExporter{logger: logger}
}

// Export writes records to path. The file is written next to path and
// renamed into place, so a failed export leaves any previous snapshot intact.
func (e *SnapshotExporter) Export(records []model.CanonicalRecord, path string) error {
	ext := filepath.Ext(path)
	// Excel rejects files whose extension it does not know.
	tmp := strings.TrimSuffix(path, ext) + ".tmp" + ext

	var err error
	switch FormatForPath(path) {
	case FormatExcel:
		err = e.exportExcel(records, tmp)
	default:
		err = e.exportCSV(records, tmp)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}

	e.logger.Info("Cleaned data exported",
		zap.String("path", path),
		zap.Int("rows", len(records)))
	return nil
}

func (e *SnapshotExporter) exportCSV(records []model.CanonicalRecord, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(model.EmployeeColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(snapshotCells(r)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return file.Close()
}

func (e *SnapshotExporter) exportExcel(records []model.CanonicalRecord, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", snapshotSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range model.EmployeeColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(snapshotSheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(snapshotSheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for rowIdx, r := range records {
		for colIdx, v := range r.Values() {
			value, ok := excelValue(v)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(snapshotSheet, cell, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// excelValue unwraps pointers so numbers land as numeric cells. ok is false
// for nulls, which stay empty.
func excelValue(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case *int64:
		if val == nil {
			return nil, false
		}
		return *val, true
	case *string:
		if val == nil {
			return nil, false
		}
		return *val, true
	case model.Date:
		return val.String(), true
	default:
		return val, true
	}
}

// snapshotCells renders a record for CSV; nulls become empty fields.
func snapshotCells(r model.CanonicalRecord) []string {
	optInt := func(v *int64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatInt(*v, 10)
	}
	optText := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}

	return []string{
		optInt(r.EmployeeID),
		r.Name,
		optInt(r.Age),
		optText(r.Department),
		r.DateOfJoining.String(),
		strconv.FormatInt(r.YearsOfExperience, 10),
		r.Country,
		optInt(r.Salary),
		r.PerformanceRating,
	}
}
