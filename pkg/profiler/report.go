// pkg/profiler/report.go
package profiler

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

const nullText = "NULL"

// Print renders the report as plain text tables.
func (r *Report) Print(w io.Writer) error {
	p := &printer{w: w}

	p.line("=== Data Profiling Report ===")
	rows, cols := r.Shape()
	p.line("")
	p.line(fmt.Sprintf("Shape of Data: (%d, %d)", rows, cols))

	p.line("")
	p.line("First few records:")
	if len(r.Head) == 0 {
		p.line("(no rows)")
	} else {
		head := make([][]string, len(r.Head))
		for i, rec := range r.Head {
			head[i] = append([]string{strconv.FormatInt(rec.ID, 10)}, rawCells(rec)...)
		}
		p.table(r.Columns, head)
	}

	p.line("")
	p.line("Missing Values per Column:")
	nulls := make([][]string, len(r.NullCounts))
	for i, c := range r.NullCounts {
		nulls[i] = []string{c.Column, strconv.Itoa(c.Count)}
	}
	p.table([]string{"column", "nulls"}, nulls)

	p.line("")
	p.line("Statistical Summary for Numeric Columns:")
	stats := make([][]string, len(r.Numeric))
	for i, s := range r.Numeric {
		stats[i] = []string{
			s.Column, strconv.Itoa(s.Count),
			number(s.Mean), number(s.Std), number(s.Min),
			number(s.Q25), number(s.Q50), number(s.Q75), number(s.Max),
		}
	}
	p.table([]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, stats)

	p.line("")
	if len(r.Duplicates) == 0 {
		p.line("No duplicate Employee ID and Name records found.")
	} else {
		p.line("Duplicate Employee ID and Name records found:")
		dups := make([][]string, len(r.Duplicates))
		for i, g := range r.Duplicates {
			dups[i] = []string{intCell(g.EmployeeID), textCell(g.Name), strconv.Itoa(len(g.Rows)), joinInts(g.Rows)}
		}
		p.table([]string{model.ColEmployeeID, model.ColName, "count", "rows"}, dups)
	}

	p.line("")
	if len(r.InvalidDates) == 0 {
		p.line(fmt.Sprintf("All %s values are valid or missing.", model.ColDateOfJoining))
	} else {
		p.line(fmt.Sprintf("Records with invalid date format in %s:", model.ColDateOfJoining))
		bad := make([][]string, len(r.InvalidDates))
		for i, d := range r.InvalidDates {
			bad[i] = []string{intCell(d.EmployeeID), d.Raw}
		}
		p.table([]string{model.ColEmployeeID, model.ColDateOfJoining}, bad)
	}

	p.line("")
	p.line("Unique Department values (raw):")
	quoted := make([]string, len(r.Departments))
	for i, d := range r.Departments {
		quoted[i] = strconv.Quote(d)
	}
	p.line("[" + strings.Join(quoted, ", ") + "]")

	return p.err
}

// printer remembers the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

// table writes a header and rows, padding cells to their display width.
func (p *printer) table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	render := func(cells []string) string {
		var sb strings.Builder
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		return strings.TrimRight(sb.String(), " ")
	}

	p.line(render(header))
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	p.line(render(sep))
	for _, row := range rows {
		p.line(render(row))
	}
}

func rawCells(r model.RawRecord) []string {
	return []string{
		intCell(r.EmployeeID),
		textCell(r.Name),
		intCell(r.Age),
		textCell(r.Department),
		textCell(r.DateOfJoining),
		intCell(r.YearsOfExperience),
		textCell(r.Country),
		intCell(r.Salary),
		textCell(r.PerformanceRating),
	}
}

func intCell(v *int64) string {
	if v == nil {
		return nullText
	}
	return strconv.FormatInt(*v, 10)
}

func textCell(v *string) string {
	if v == nil {
		return nullText
	}
	return *v
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
