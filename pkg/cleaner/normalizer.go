// pkg/cleaner/normalizer.go
package cleaner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/David-Botos/employee-cleanse/pkg/mapping"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// Default values for missing fields.
const (
	UnknownText              = "Unknown"
	UnknownYearsOfExperience = int64(-1)
)

// Cleaning reasons recorded on operations.
const (
	ReasonMissingValue    = "missing_value"
	ReasonUnparseableDate = "unparseable_date"
	ReasonReformatted     = "reformatted"
	ReasonDuplicateID     = "duplicate_employee_id"
	ReasonWhitespaceCase  = "whitespace_or_case"
	ReasonMappedAlias     = "mapped_alias"
	ReasonUnmapped        = "unmapped_value"
)

// Stats counts what a Clean call changed.
type Stats struct {
	InputRows           int
	OutputRows          int
	DefaultsFilled      int
	DatesStandardized   int
	DatesDefaulted      int
	DuplicatesDropped   int
	TextNormalized      int
	DepartmentsRemapped int
}

// Result is the output of Clean: the canonical rows, every change that was
// made to get there, and counters.
type Result struct {
	Records    []model.CanonicalRecord
	Operations []model.CleaningOperation
	Stats      Stats
}

// Normalizer applies the cleaning rules. It holds only immutable
// configuration and does no I/O, so one value can be reused across calls.
type Normalizer struct {
	departments *mapping.DepartmentMap
	table       string
}

// NewNormalizer creates a Normalizer. A nil department map means the
// built-in defaults. table names the destination recorded on operations.
func NewNormalizer(departments *mapping.DepartmentMap, table string) *Normalizer {
	if departments == nil {
		departments = mapping.DefaultDepartments()
	}
	return &Normalizer{departments: departments, table: table}
}

// Clean normalizes raw with the built-in department map.
func Clean(raw []model.RawRecord) Result {
	return NewNormalizer(nil, "").Clean(raw)
}

// Clean turns raw records into canonical ones. Rules run in order: missing
// value defaults, join date standardization, deduplication on Employee_ID
// keeping the first occurrence, then text normalization. The input is never
// modified and Clean never fails.
func (n *Normalizer) Clean(raw []model.RawRecord) Result {
	run := &cleanRun{
		table: n.table,
		// cases.Caser is stateful; one per call.
		title: cases.Title(language.Und),
	}
	run.result.Stats.InputRows = len(raw)

	rows := make([]model.CanonicalRecord, len(raw))
	ids := make([]string, len(raw))
	for i, r := range raw {
		ids[i] = rowIdentifier(r, i)
		rows[i] = run.fillDefaults(r, ids[i])
		rows[i].DateOfJoining = run.standardizeDate(r.DateOfJoining, ids[i])
	}

	kept := run.dedup(raw, ids)

	out := make([]model.CanonicalRecord, 0, len(kept))
	for _, i := range kept {
		row := rows[i]
		run.normalizeText(&row, n.departments, ids[i])
		out = append(out, row)
	}

	run.result.Records = out
	run.result.Stats.OutputRows = len(out)
	return run.result
}

type cleanRun struct {
	table  string
	title  cases.Caser
	result Result
}

func (c *cleanRun) record(id, column string, from, to *string, op model.OperationKind, reason string) {
	c.result.Operations = append(c.result.Operations, model.CleaningOperation{
		TableName:     c.table,
		ColumnName:    column,
		OriginalValue: from,
		NewValue:      to,
		RowIdentifier: id,
		Operation:     op,
		Reason:        reason,
	})
}

// fillDefaults copies r into canonical shape, substituting defaults for
// missing Name, Country, Performance_Rating and Years_of_Experience. Blank
// text counts as missing.
func (c *cleanRun) fillDefaults(r model.RawRecord, id string) model.CanonicalRecord {
	out := model.CanonicalRecord{
		EmployeeID: copyInt(r.EmployeeID),
		Age:        copyInt(r.Age),
		Salary:     copyInt(r.Salary),
	}
	if r.Department != nil {
		out.Department = model.StringPtr(*r.Department)
	}

	out.Name = c.textOrDefault(r.Name, model.ColName, id)
	out.Country = c.textOrDefault(r.Country, model.ColCountry, id)
	out.PerformanceRating = c.textOrDefault(r.PerformanceRating, model.ColPerformanceRating, id)

	if r.YearsOfExperience != nil {
		out.YearsOfExperience = *r.YearsOfExperience
	} else {
		out.YearsOfExperience = UnknownYearsOfExperience
		c.record(id, model.ColYearsOfExperience, nil,
			model.StringPtr(strconv.FormatInt(UnknownYearsOfExperience, 10)),
			model.OpDefaultFill, ReasonMissingValue)
		c.result.Stats.DefaultsFilled++
	}

	return out
}

func (c *cleanRun) textOrDefault(v *string, column, id string) string {
	if v != nil && strings.TrimSpace(*v) != "" {
		return *v
	}
	c.record(id, column, copyString(v), model.StringPtr(UnknownText), model.OpDefaultFill, ReasonMissingValue)
	c.result.Stats.DefaultsFilled++
	return UnknownText
}

func (c *cleanRun) standardizeDate(raw *string, id string) model.Date {
	if raw == nil {
		c.record(id, model.ColDateOfJoining, nil, model.StringPtr(model.DefaultJoinDate.String()),
			model.OpDateFallback, ReasonMissingValue)
		c.result.Stats.DatesDefaulted++
		return model.DefaultJoinDate
	}

	d, ok := ParseJoinDate(*raw)
	if !ok {
		c.record(id, model.ColDateOfJoining, copyString(raw), model.StringPtr(model.DefaultJoinDate.String()),
			model.OpDateFallback, ReasonUnparseableDate)
		c.result.Stats.DatesDefaulted++
		return model.DefaultJoinDate
	}

	if formatted := d.String(); formatted != *raw {
		c.record(id, model.ColDateOfJoining, copyString(raw), model.StringPtr(formatted),
			model.OpDateStandardize, ReasonReformatted)
		c.result.Stats.DatesStandardized++
	}
	return d
}

// dedup returns the indexes of rows to keep: the first row for each
// Employee_ID. Rows without an Employee_ID form a single group.
func (c *cleanRun) dedup(raw []model.RawRecord, ids []string) []int {
	seen := make(map[int64]struct{}, len(raw))
	seenNull := false
	kept := make([]int, 0, len(raw))

	for i, r := range raw {
		duplicate := false
		if r.EmployeeID == nil {
			duplicate = seenNull
			seenNull = true
		} else {
			_, duplicate = seen[*r.EmployeeID]
			seen[*r.EmployeeID] = struct{}{}
		}

		if duplicate {
			var original *string
			if r.EmployeeID != nil {
				original = model.StringPtr(strconv.FormatInt(*r.EmployeeID, 10))
			}
			c.record(ids[i], model.ColEmployeeID, original, nil, model.OpDedupDrop, ReasonDuplicateID)
			c.result.Stats.DuplicatesDropped++
			continue
		}
		kept = append(kept, i)
	}
	return kept
}

// normalizeText trims and title-cases Name and Country and canonicalizes
// Department.
func (c *cleanRun) normalizeText(row *model.CanonicalRecord, departments *mapping.DepartmentMap, id string) {
	row.Name = c.titleCase(row.Name, model.ColName, id)
	row.Country = c.titleCase(row.Country, model.ColCountry, id)

	if row.Department == nil {
		return
	}
	original := *row.Department
	canonical := departments.Canonicalize(original)
	if canonical == "" {
		// All-whitespace department carries no information.
		row.Department = nil
		c.record(id, model.ColDepartment, model.StringPtr(original), nil, model.OpTextNormalize, ReasonMissingValue)
		c.result.Stats.TextNormalized++
		return
	}
	row.Department = model.StringPtr(canonical)
	if canonical == original {
		return
	}

	reason := ReasonUnmapped
	if _, ok := departments.Lookup(mapping.Key(original)); ok {
		reason = ReasonMappedAlias
	}
	c.record(id, model.ColDepartment, model.StringPtr(original), model.StringPtr(canonical), model.OpDepartmentMap, reason)
	c.result.Stats.DepartmentsRemapped++
}

func (c *cleanRun) titleCase(v, column, id string) string {
	out := titleWords(c.title, strings.TrimSpace(v))
	if out != v {
		c.record(id, column, model.StringPtr(v), model.StringPtr(out), model.OpTextNormalize, ReasonWhitespaceCase)
		c.result.Stats.TextNormalized++
	}
	return out
}

// titleWords title-cases every run of letters on its own, so any non-letter
// starts a new word: "o'brien" becomes "O'Brien" and "anne_marie" becomes
// "Anne_Marie".
func titleWords(caser cases.Caser, s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	start := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
		} else {
			if start >= 0 {
				sb.WriteString(caser.String(s[start:i]))
				start = -1
			}
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	if start >= 0 {
		sb.WriteString(caser.String(s[start:]))
	}
	return sb.String()
}

// rowIdentifier names a row in operations: its Employee_ID when present,
// otherwise its staging id or input position.
func rowIdentifier(r model.RawRecord, i int) string {
	switch {
	case r.EmployeeID != nil:
		return strconv.FormatInt(*r.EmployeeID, 10)
	case r.ID > 0:
		return fmt.Sprintf("staging:%d", r.ID)
	default:
		return fmt.Sprintf("row:%d", i+1)
	}
}

func copyInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	return model.Int64Ptr(*v)
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	return model.StringPtr(*v)
}
