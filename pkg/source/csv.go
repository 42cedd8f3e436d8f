// Package source reads the raw employee file and resolves its header onto the
// canonical column names, so later stages only ever see one spelling.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// ErrSourceNotFound is returned when the source file does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// columnAliases lists accepted header spellings per canonical column, in
// order of preference. The first spelling present in the header wins.
var columnAliases = map[string][]string{
	model.ColEmployeeID:        {"Employee Id", model.ColEmployeeID},
	model.ColName:              {model.ColName},
	model.ColAge:               {model.ColAge},
	model.ColDepartment:        {model.ColDepartment},
	model.ColDateOfJoining:     {"Date of Joining", model.ColDateOfJoining},
	model.ColYearsOfExperience: {model.ColYearsOfExperience, "Years of Experience"},
	model.ColCountry:           {model.ColCountry},
	model.ColSalary:            {model.ColSalary},
	model.ColPerformanceRating: {model.ColPerformanceRating, "Performance Rating"},
}

// Batch is the result of reading a source file.
type Batch struct {
	Records []model.RawRecord
	// Columns maps each canonical column to the header text it was read
	// from. Columns absent from the file are not present.
	Columns map[string]string
	// Diagnostics lists values that could not be read as their column type
	// and columns missing from the header.
	Diagnostics []model.Diagnostic
}

// CSVSource reads employee rows from a delimited file with a header row.
type CSVSource struct {
	Path  string
	Comma rune
}

// NewCSVSource creates a comma-delimited source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Comma: ','}
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string { return s.Path }

// Read loads every row of the file. A missing file yields an error wrapping
// ErrSourceNotFound.
func (s *CSVSource) Read() (*Batch, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
		}
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, s.Comma)
}

// ReadCSV parses employee rows from r. A leading UTF-8 byte order mark is
// dropped. An empty input yields an empty batch.
func ReadCSV(r io.Reader, comma rune) (*Batch, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Batch{Columns: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	batch := &Batch{Columns: make(map[string]string, len(model.EmployeeColumns))}
	index := resolveHeader(header, batch)

	row := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if isBlankRow(fields) {
			continue
		}
		batch.Records = append(batch.Records, parseRow(fields, index, row, batch))
	}

	return batch, nil
}

// resolveHeader maps canonical columns to field positions. Exact alias
// matches are tried in preference order before a loose match that ignores
// case, spaces and underscores.
func resolveHeader(header []string, batch *Batch) map[string]int {
	exact := make(map[string]int, len(header))
	loose := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, seen := exact[h]; !seen {
			exact[h] = i
		}
		if _, seen := loose[looseName(h)]; !seen {
			loose[looseName(h)] = i
		}
	}

	index := make(map[string]int, len(model.EmployeeColumns))
	for _, col := range model.EmployeeColumns {
		found := false
		for _, alias := range columnAliases[col] {
			if i, ok := exact[alias]; ok {
				index[col] = i
				found = true
				break
			}
		}
		if !found {
			if i, ok := loose[looseName(col)]; ok {
				index[col] = i
				found = true
			}
		}
		if !found {
			batch.Diagnostics = append(batch.Diagnostics, model.Diagnostic{
				Stage:     "source",
				Condition: "column_missing",
				Column:    col,
				Message:   "column not present in header; values load as null",
			})
			continue
		}
		batch.Columns[col] = strings.TrimSpace(header[index[col]])
	}
	return index
}

func looseName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(fields []string, index map[string]int, row int, batch *Batch) model.RawRecord {
	get := func(col string) *string {
		i, ok := index[col]
		if !ok || i >= len(fields) {
			return nil
		}
		if IsNull(fields[i]) {
			return nil
		}
		v := fields[i]
		return &v
	}
	getInt := func(col string) *int64 {
		raw := get(col)
		if raw == nil {
			return nil
		}
		v, err := ParseInt(*raw)
		if err != nil {
			batch.Diagnostics = append(batch.Diagnostics, model.Diagnostic{
				Stage:     "source",
				Condition: "invalid_integer",
				Row:       row,
				Column:    col,
				Value:     *raw,
				Message:   "value is not an integer; loaded as null",
			})
			return nil
		}
		return &v
	}

	return model.RawRecord{
		EmployeeID:        getInt(model.ColEmployeeID),
		Name:              get(model.ColName),
		Age:               getInt(model.ColAge),
		Department:        get(model.ColDepartment),
		DateOfJoining:     get(model.ColDateOfJoining),
		YearsOfExperience: getInt(model.ColYearsOfExperience),
		Country:           get(model.ColCountry),
		Salary:            getInt(model.ColSalary),
		PerformanceRating: get(model.ColPerformanceRating),
	}
}
