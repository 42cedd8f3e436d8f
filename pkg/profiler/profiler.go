// pkg/profiler/profiler.go
package profiler

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/employee-cleanse/pkg/cleaner"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// HeadRows is the number of leading rows shown in a report preview.
const HeadRows = 5

// Report describes the quality of a raw table.
type Report struct {
	Rows    int
	Columns []string // staging columns, surrogate id first

	Head         []model.RawRecord
	NullCounts   []ColumnCount
	Numeric      []NumericSummary
	Duplicates   []DuplicateGroup
	InvalidDates []InvalidDate
	Departments  []string // distinct non-null raw values, first-seen order
}

// ColumnCount is a per-column tally.
type ColumnCount struct {
	Column string
	Count  int
}

// NumericSummary holds descriptive statistics over the non-null values of a
// column. Std is the sample standard deviation; it is NaN below two values,
// and every statistic is NaN when Count is zero.
type NumericSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// DuplicateGroup is a set of rows sharing Employee_ID and Name.
type DuplicateGroup struct {
	EmployeeID *int64
	Name       *string
	Rows       []int // staging ids, or 1-based positions when ids are unset
}

// InvalidDate is a join date the cleaning parser cannot read.
type InvalidDate struct {
	EmployeeID *int64
	Raw        string
}

// Shape returns rows and columns, like a dataframe shape.
func (r *Report) Shape() (int, int) {
	return r.Rows, len(r.Columns)
}

// Profile analyzes records without modifying them. Empty input gives an
// empty report.
func Profile(records []model.RawRecord) *Report {
	report := &Report{
		Rows:    len(records),
		Columns: model.StagingTable("").ColumnNames(),
	}

	report.Head = append([]model.RawRecord(nil), records[:min(HeadRows, len(records))]...)
	report.NullCounts = nullCounts(records)
	report.Numeric = []NumericSummary{
		summarize(model.ColEmployeeID, records, func(r model.RawRecord) *int64 { return r.EmployeeID }),
		summarize(model.ColAge, records, func(r model.RawRecord) *int64 { return r.Age }),
		summarize(model.ColYearsOfExperience, records, func(r model.RawRecord) *int64 { return r.YearsOfExperience }),
		summarize(model.ColSalary, records, func(r model.RawRecord) *int64 { return r.Salary }),
	}
	report.Duplicates = duplicateGroups(records)
	report.InvalidDates = invalidDates(records)
	report.Departments = distinctDepartments(records)

	return report
}

// Log writes the headline numbers of the report as structured fields.
func (r *Report) Log(logger *zap.Logger) {
	duplicateRows := 0
	for _, g := range r.Duplicates {
		duplicateRows += len(g.Rows)
	}
	fields := []zap.Field{
		zap.Int("rows", r.Rows),
		zap.Int("columns", len(r.Columns)),
		zap.Int("duplicate_groups", len(r.Duplicates)),
		zap.Int("duplicate_rows", duplicateRows),
		zap.Int("invalid_dates", len(r.InvalidDates)),
		zap.Int("distinct_departments", len(r.Departments)),
	}
	for _, c := range r.NullCounts {
		if c.Count > 0 {
			fields = append(fields, zap.Int("nulls_"+c.Column, c.Count))
		}
	}
	logger.Info("Profiled raw data", fields...)
}

func nullCounts(records []model.RawRecord) []ColumnCount {
	counts := make([]int, len(model.EmployeeColumns))
	for _, r := range records {
		for i, v := range r.Values() {
			if isNil(v) {
				counts[i]++
			}
		}
	}

	out := make([]ColumnCount, 0, len(model.EmployeeColumns)+1)
	// Surrogate id is assigned by the store and never null.
	out = append(out, ColumnCount{Column: "id"})
	for i, col := range model.EmployeeColumns {
		out = append(out, ColumnCount{Column: col, Count: counts[i]})
	}
	return out
}

func isNil(v interface{}) bool {
	switch p := v.(type) {
	case *int64:
		return p == nil
	case *string:
		return p == nil
	default:
		return v == nil
	}
}

func summarize(column string, records []model.RawRecord, field func(model.RawRecord) *int64) NumericSummary {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v := field(r); v != nil {
			values = append(values, float64(*v))
		}
	}

	s := NumericSummary{Column: column, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		s.Std = math.NaN()
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)

	sort.Float64s(values)
	s.Q25 = quantile(0.25, values)
	s.Q50 = quantile(0.50, values)
	s.Q75 = quantile(0.75, values)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted
// (Hyndman and Fan type 7). gonum's stat.Quantile offers only the
// empirical and piecewise-linear variants, which place quartiles differently.
func quantile(p float64, sorted []float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

type groupKey struct {
	hasID   bool
	id      int64
	hasName bool
	name    string
}

func duplicateGroups(records []model.RawRecord) []DuplicateGroup {
	index := make(map[groupKey]int)
	var groups []DuplicateGroup

	for i, r := range records {
		var k groupKey
		if r.EmployeeID != nil {
			k.hasID, k.id = true, *r.EmployeeID
		}
		if r.Name != nil {
			k.hasName, k.name = true, *r.Name
		}

		row := i + 1
		if r.ID > 0 {
			row = int(r.ID)
		}

		if g, ok := index[k]; ok {
			groups[g].Rows = append(groups[g].Rows, row)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, DuplicateGroup{EmployeeID: r.EmployeeID, Name: r.Name, Rows: []int{row}})
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Rows) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func invalidDates(records []model.RawRecord) []InvalidDate {
	var out []InvalidDate
	for _, r := range records {
		if r.DateOfJoining == nil {
			continue
		}
		if _, ok := cleaner.ParseJoinDate(*r.DateOfJoining); !ok {
			out = append(out, InvalidDate{EmployeeID: r.EmployeeID, Raw: *r.DateOfJoining})
		}
	}
	return out
}

func distinctDepartments(records []model.RawRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if r.Department == nil {
			continue
		}
		if _, ok := seen[*r.Department]; ok {
			continue
		}
		seen[*r.Department] = struct{}{}
		out = append(out, *r.Department)
	}
	return out
}
