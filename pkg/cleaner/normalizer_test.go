package cleaner

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/employee-cleanse/pkg/mapping"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

func raw(id *int64, name *string, age *int64, dept, date *string, years *int64, country *string, salary *int64, rating *string) model.RawRecord {
	return model.RawRecord{
		EmployeeID:        id,
		Name:              name,
		Age:               age,
		Department:        dept,
		DateOfJoining:     date,
		YearsOfExperience: years,
		Country:           country,
		Salary:            salary,
		PerformanceRating: rating,
	}
}

var (
	i64 = model.Int64Ptr
	str = model.StringPtr
)

func scenarioRows() []model.RawRecord {
	return []model.RawRecord{
		raw(i64(1), str("john doe"), i64(30), str("MARKNG"), str("13-01-2022"), i64(5), str("usa"), i64(50000), str("Good")),
		raw(i64(1), str("John Doe"), i64(30), str("Marketing"), str("2022-01-13"), i64(5), str("USA"), i64(50000), str("Good")),
		raw(i64(2), str("  jane "), i64(28), str("oprations"), str("not-a-date"), nil, nil, i64(40000), nil),
	}
}

func TestCleanScenario(t *testing.T) {
	result := Clean(scenarioRows())
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, int64(1), *first.EmployeeID)
	assert.Equal(t, "John Doe", first.Name)
	assert.Equal(t, "MARKETING", *first.Department)
	assert.Equal(t, "1900-01-01", first.DateOfJoining.String())
	assert.Equal(t, "Usa", first.Country)
	assert.Equal(t, int64(5), first.YearsOfExperience)
	assert.Equal(t, "Good", first.PerformanceRating)

	second := result.Records[1]
	assert.Equal(t, int64(2), *second.EmployeeID)
	assert.Equal(t, "OPERATIONS", *second.Department)
	assert.Equal(t, "Jane", second.Name)
	assert.Equal(t, "1900-01-01", second.DateOfJoining.String())
	assert.Equal(t, int64(-1), second.YearsOfExperience)
	assert.Equal(t, "Unknown", second.Country)
	assert.Equal(t, "Unknown", second.PerformanceRating)
	assert.Equal(t, int64(40000), *second.Salary)

	assert.Equal(t, Stats{
		InputRows:           3,
		OutputRows:          2,
		DefaultsFilled:      3,
		DatesStandardized:   0,
		DatesDefaulted:      2,
		DuplicatesDropped:   1,
		TextNormalized:      3,
		DepartmentsRemapped: 2,
	}, result.Stats)
}

func TestCleanOperations(t *testing.T) {
	result := NewNormalizer(nil, "employee_data").Clean(scenarioRows())

	var drops, fallbacks []model.CleaningOperation
	for _, op := range result.Operations {
		assert.Equal(t, "employee_data", op.TableName)
		switch op.Operation {
		case model.OpDedupDrop:
			drops = append(drops, op)
		case model.OpDateFallback:
			fallbacks = append(fallbacks, op)
		}
	}

	require.Len(t, drops, 1)
	assert.Equal(t, "1", drops[0].RowIdentifier)
	assert.Nil(t, drops[0].NewValue)
	assert.Equal(t, ReasonDuplicateID, drops[0].Reason)

	require.Len(t, fallbacks, 2)
	assert.Equal(t, "13-01-2022", *fallbacks[0].OriginalValue)
	assert.Equal(t, "not-a-date", *fallbacks[1].OriginalValue)
	assert.Equal(t, "1900-01-01", *fallbacks[1].NewValue)
	assert.Equal(t, ReasonUnparseableDate, fallbacks[1].Reason)
}

func TestCleanMissingValueDefaults(t *testing.T) {
	result := Clean([]model.RawRecord{
		raw(i64(7), nil, nil, nil, nil, nil, nil, nil, nil),
	})
	require.Len(t, result.Records, 1)

	r := result.Records[0]
	assert.Equal(t, "Unknown", r.Name)
	assert.Equal(t, "Unknown", r.PerformanceRating)
	assert.Equal(t, "Unknown", r.Country)
	assert.Equal(t, int64(-1), r.YearsOfExperience)
	assert.Equal(t, model.DefaultJoinDate, r.DateOfJoining)
	assert.Nil(t, r.Age)
	assert.Nil(t, r.Salary)
	assert.Nil(t, r.Department)
}

func TestCleanBlankTextIsMissing(t *testing.T) {
	result := Clean([]model.RawRecord{
		raw(i64(1), str("   "), nil, str(" \t "), nil, i64(0), str(""), nil, str(" ")),
	})
	r := result.Records[0]
	assert.Equal(t, "Unknown", r.Name)
	assert.Equal(t, "Unknown", r.Country)
	assert.Equal(t, "Unknown", r.PerformanceRating)
	assert.Equal(t, int64(0), r.YearsOfExperience)
	assert.Nil(t, r.Department)
}

func TestCleanNullIDsFormOneGroup(t *testing.T) {
	result := Clean([]model.RawRecord{
		raw(nil, str("a"), nil, nil, nil, nil, nil, nil, nil),
		raw(i64(3), str("b"), nil, nil, nil, nil, nil, nil, nil),
		raw(nil, str("c"), nil, nil, nil, nil, nil, nil, nil),
	})
	require.Len(t, result.Records, 2)
	assert.Nil(t, result.Records[0].EmployeeID)
	assert.Equal(t, "A", result.Records[0].Name)
	assert.Equal(t, "B", result.Records[1].Name)
	assert.Equal(t, 1, result.Stats.DuplicatesDropped)
}

func TestCleanUnmappedDepartment(t *testing.T) {
	result := Clean([]model.RawRecord{
		raw(i64(1), nil, nil, str("Facilities Mgmt"), nil, nil, nil, nil, nil),
		raw(i64(2), nil, nil, str(" r & d "), nil, nil, nil, nil, nil),
	})
	assert.Equal(t, "FACILITIESMGMT", *result.Records[0].Department)
	assert.Equal(t, "R&D", *result.Records[1].Department)
}

func TestCleanUsesOverlay(t *testing.T) {
	departments, err := mapping.DefaultDepartments().WithOverlay([]byte("departments:\n  PEOPLEOPS: HR\n"))
	require.NoError(t, err)

	result := NewNormalizer(departments, "").Clean([]model.RawRecord{
		raw(i64(1), nil, nil, str("People Ops"), nil, nil, nil, nil, nil),
	})
	assert.Equal(t, "HR", *result.Records[0].Department)

	again := NewNormalizer(departments, "").Clean(toRaw(result.Records))
	assert.Equal(t, result.Records, again.Records)
}

func TestCleanTitleCasesAfterEveryNonLetter(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"o'brien", "O'Brien"},
		{"anne_marie", "Anne_Marie"},
		{"  mary-jane SMITH ", "Mary-Jane Smith"},
		{"MCDONALD", "Mcdonald"},
		{"jean  luc", "Jean  Luc"},
		{"élodie dürr", "Élodie Dürr"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			result := Clean([]model.RawRecord{
				raw(i64(1), str(tc.in), nil, nil, nil, nil, str(tc.in), nil, nil),
			})
			require.Len(t, result.Records, 1)
			assert.Equal(t, tc.want, result.Records[0].Name)
			assert.Equal(t, tc.want, result.Records[0].Country)

			again := Clean(toRaw(result.Records))
			assert.Equal(t, tc.want, again.Records[0].Name)
		})
	}
}

func TestCleanOverlayCannotBreakIdempotence(t *testing.T) {
	_, err := mapping.DefaultDepartments().WithOverlay([]byte("departments:\n  HR: FINANCE\n"))
	require.ErrorIs(t, err, mapping.ErrLabelRemapped)
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	in := scenarioRows()
	before := fmt.Sprintf("%v %v %v", *in[2].Name, *in[0].Department, *in[0].DateOfJoining)

	result := Clean(in)
	*result.Records[0].EmployeeID = 99

	assert.Equal(t, before, fmt.Sprintf("%v %v %v", *in[2].Name, *in[0].Department, *in[0].DateOfJoining))
	assert.Equal(t, int64(1), *in[0].EmployeeID)
	assert.Nil(t, in[2].YearsOfExperience)
}

func TestCleanEmpty(t *testing.T) {
	result := Clean(nil)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Operations)
	assert.Zero(t, result.Stats.OutputRows)
}

// generateRawTable builds a messy raw table with repeated and missing ids,
// varied date formats and department spellings.
func generateRawTable(faker *gofakeit.Faker, n int) []model.RawRecord {
	departments := []string{
		"Marketing", "MARKNG", "marKting", "Oprations", "operations", "Cust Support",
		"support", "human resources", "HR", "It", "logstics", "Legl", "Sales",
		"fin", "finanace", "R&D", "rnd", "research", "Facilities", "  ", "Data Science",
	}
	layouts := []string{
		"2006-01-02", "01/02/2006", "1/2/2006", "02-01-2006", "Jan 2, 2006",
		"2006/01/02", "2 January 2006", "2006-01-02 15:04:05",
	}
	garbage := []string{"not-a-date", "", "31/31/2020", "yesterday", "2020-13-45"}

	maybe := func(p int) bool { return faker.Number(1, 100) <= p }

	rows := make([]model.RawRecord, n)
	for i := range rows {
		var r model.RawRecord
		if maybe(95) {
			r.EmployeeID = i64(int64(faker.Number(1, n/2+1)))
		}
		if maybe(85) {
			name := faker.Name()
			switch faker.Number(0, 3) {
			case 0:
				name = "  " + name + " "
			case 1:
				name = strings.ToLower(name)
			}
			r.Name = str(name)
		}
		if maybe(90) {
			r.Age = i64(int64(faker.Number(18, 70)))
		}
		if maybe(90) {
			r.Department = str(faker.RandomString(departments))
		}
		if maybe(90) {
			if maybe(80) {
				r.DateOfJoining = str(faker.Date().Format(faker.RandomString(layouts)))
			} else {
				r.DateOfJoining = str(faker.RandomString(garbage))
			}
		}
		if maybe(80) {
			r.YearsOfExperience = i64(int64(faker.Number(0, 40)))
		}
		if maybe(85) {
			country := faker.Country()
			if faker.Bool() {
				country = " " + country
			}
			r.Country = str(country)
		}
		if maybe(90) {
			r.Salary = i64(int64(faker.Number(20000, 200000)))
		}
		if maybe(85) {
			r.PerformanceRating = str(faker.RandomString([]string{"Excellent", "Good", "Average", "Poor"}))
		}
		rows[i] = r
	}
	return rows
}

func toRaw(records []model.CanonicalRecord) []model.RawRecord {
	out := make([]model.RawRecord, len(records))
	for i, r := range records {
		out[i] = r.Raw()
	}
	return out
}

func TestCleanIsIdempotent(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		table := generateRawTable(gofakeit.New(seed), 200)

		once := Clean(table)
		twice := Clean(toRaw(once.Records))

		require.Equal(t, once.Records, twice.Records, "seed %d", seed)
		assert.Zero(t, twice.Stats.DuplicatesDropped, "seed %d", seed)
		assert.Zero(t, twice.Stats.DefaultsFilled, "seed %d", seed)
		assert.Zero(t, twice.Stats.DatesDefaulted, "seed %d", seed)
		assert.Zero(t, twice.Stats.DepartmentsRemapped, "seed %d", seed)
	}
}

func TestCleanProperties(t *testing.T) {
	isoDate := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	departments := mapping.DefaultDepartments()

	for seed := int64(1); seed <= 20; seed++ {
		table := generateRawTable(gofakeit.New(seed), 300)
		result := Clean(table)

		// Reconstruct which input row each output row came from.
		var sources []model.RawRecord
		seen := map[int64]bool{}
		seenNull := false
		for _, r := range table {
			if r.EmployeeID == nil {
				if !seenNull {
					sources = append(sources, r)
				}
				seenNull = true
				continue
			}
			if !seen[*r.EmployeeID] {
				sources = append(sources, r)
			}
			seen[*r.EmployeeID] = true
		}
		require.Len(t, result.Records, len(sources), "seed %d", seed)
		assert.Equal(t, len(table)-len(sources), result.Stats.DuplicatesDropped)

		ids := map[string]bool{}
		for i, out := range result.Records {
			in := sources[i]

			// Uniqueness.
			key := "null"
			if out.EmployeeID != nil {
				key = fmt.Sprint(*out.EmployeeID)
			}
			assert.False(t, ids[key], "seed %d: duplicate id %s", seed, key)
			ids[key] = true

			// Date totality.
			date := out.DateOfJoining.String()
			assert.Regexp(t, isoDate, date)
			if in.DateOfJoining != nil {
				if parsed, ok := ParseJoinDate(*in.DateOfJoining); ok {
					assert.Equal(t, parsed.String(), date)
				} else {
					assert.Equal(t, "1900-01-01", date)
				}
			} else {
				assert.Equal(t, "1900-01-01", date)
			}

			// Department closure.
			if in.Department != nil {
				if label, ok := departments.Lookup(mapping.Key(*in.Department)); ok {
					require.NotNil(t, out.Department)
					assert.Equal(t, label, *out.Department)
				}
			}

			// Missing-value defaults.
			if in.YearsOfExperience == nil {
				assert.Equal(t, int64(-1), out.YearsOfExperience)
			}
			if in.PerformanceRating == nil {
				assert.Equal(t, "Unknown", out.PerformanceRating)
			}
			if in.Name == nil {
				assert.Equal(t, "Unknown", out.Name)
			}
			if in.Country == nil {
				assert.Equal(t, "Unknown", out.Country)
			}
		}
	}
}
