// pkg/model/employee.go
package model

// Source and snapshot column names, in canonical order.
const (
	ColEmployeeID        = "Employee_ID"
	ColName              = "Name"
	ColAge               = "Age"
	ColDepartment        = "Department"
	ColDateOfJoining     = "Date_of_Joining"
	ColYearsOfExperience = "Years_of_Experience"
	ColCountry           = "Country"
	ColSalary            = "Salary"
	ColPerformanceRating = "Performance_Rating"
)

// EmployeeColumns lists the nine employee columns in the order used by the
// source file, both tables and the exported snapshot.
var EmployeeColumns = []string{
	ColEmployeeID,
	ColName,
	ColAge,
	ColDepartment,
	ColDateOfJoining,
	ColYearsOfExperience,
	ColCountry,
	ColSalary,
	ColPerformanceRating,
}

// RawRecord is one ingested row as held in the staging table.
// Every employee field is nullable and EmployeeID may repeat.
type RawRecord struct {
	ID                int64   `db:"id"`
	EmployeeID        *int64  `db:"employee_id"`
	Name              *string `db:"name"`
	Age               *int64  `db:"age"`
	Department        *string `db:"department"`
	DateOfJoining     *string `db:"date_of_joining"`
	YearsOfExperience *int64  `db:"years_of_experience"`
	Country           *string `db:"country"`
	Salary            *int64  `db:"salary"`
	PerformanceRating *string `db:"performance_rating"`
}

// Values returns the employee fields in EmployeeColumns order, with nil for
// missing values. The surrogate ID is not included.
func (r RawRecord) Values() []interface{} {
	return []interface{}{
		r.EmployeeID,
		r.Name,
		r.Age,
		r.Department,
		r.DateOfJoining,
		r.YearsOfExperience,
		r.Country,
		r.Salary,
		r.PerformanceRating,
	}
}

// CanonicalRecord is one cleaned row of the canonical table.
// Name, Country, PerformanceRating, DateOfJoining and YearsOfExperience are
// always populated after cleaning; the remaining fields keep source nulls.
type CanonicalRecord struct {
	EmployeeID        *int64  `db:"employee_id"`
	Name              string  `db:"name"`
	Age               *int64  `db:"age"`
	Department        *string `db:"department"`
	DateOfJoining     Date    `db:"date_of_joining"`
	YearsOfExperience int64   `db:"years_of_experience"`
	Country           string  `db:"country"`
	Salary            *int64  `db:"salary"`
	PerformanceRating string  `db:"performance_rating"`
}

// Values returns the record's fields in EmployeeColumns order.
func (r CanonicalRecord) Values() []interface{} {
	return []interface{}{
		r.EmployeeID,
		r.Name,
		r.Age,
		r.Department,
		r.DateOfJoining,
		r.YearsOfExperience,
		r.Country,
		r.Salary,
		r.PerformanceRating,
	}
}

// Raw converts a canonical record back to the raw shape, so cleaned output can
// be fed through the cleaning rules again.
func (r CanonicalRecord) Raw() RawRecord {
	date := r.DateOfJoining.String()
	years := r.YearsOfExperience
	return RawRecord{
		EmployeeID:        r.EmployeeID,
		Name:              StringPtr(r.Name),
		Age:               r.Age,
		Department:        r.Department,
		DateOfJoining:     &date,
		YearsOfExperience: &years,
		Country:           StringPtr(r.Country),
		Salary:            r.Salary,
		PerformanceRating: StringPtr(r.PerformanceRating),
	}
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string { return &s }

// Int64Ptr returns a pointer to a copy of v.
func Int64Ptr(v int64) *int64 { return &v }
