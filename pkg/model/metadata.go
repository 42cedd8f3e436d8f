// pkg/model/metadata.go
package model

// ColumnType is a dialect-independent column type. The converter package maps
// it onto each store's SQL type.
type ColumnType string

const (
	TypeSerial  ColumnType = "SERIAL"  // auto-incrementing surrogate key
	TypeInteger ColumnType = "INTEGER" // nullable integer
	TypeText    ColumnType = "TEXT"    // bounded text; Length gives the bound
	TypeDate    ColumnType = "DATE"    // calendar date
)

// TableMetadata contains the structure information for a database table
type TableMetadata struct {
	Table       string   // Table name, optionally schema-qualified
	Columns     []Column // Column definitions
	PrimaryKeys []string // Table-level primary key columns
}

// Column represents metadata about a database column
type Column struct {
	Name     string     // Column name in the store
	Source   string     // Column name in files and reports
	Type     ColumnType // Logical type
	Length   int        // Maximum length for TypeText
	Nullable bool       // Whether column allows NULL values
}

// InsertColumns returns the store column names that callers supply values
// for, skipping auto-generated ones.
func (tm *TableMetadata) InsertColumns() []string {
	names := make([]string, 0, len(tm.Columns))
	for _, col := range tm.Columns {
		if col.Type == TypeSerial {
			continue
		}
		names = append(names, col.Name)
	}
	return names
}

// ColumnNames returns every store column name in definition order.
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// StagingTable describes the raw table: a surrogate key plus the nine
// employee columns with the join date kept as free text. No constraint on
// employee_id, so duplicates load as-is.
func StagingTable(name string) *TableMetadata {
	return &TableMetadata{
		Table: name,
		Columns: []Column{
			{Name: "id", Source: "id", Type: TypeSerial},
			{Name: "employee_id", Source: ColEmployeeID, Type: TypeInteger, Nullable: true},
			{Name: "name", Source: ColName, Type: TypeText, Length: 255, Nullable: true},
			{Name: "age", Source: ColAge, Type: TypeInteger, Nullable: true},
			{Name: "department", Source: ColDepartment, Type: TypeText, Length: 255, Nullable: true},
			{Name: "date_of_joining", Source: ColDateOfJoining, Type: TypeText, Length: 50, Nullable: true},
			{Name: "years_of_experience", Source: ColYearsOfExperience, Type: TypeInteger, Nullable: true},
			{Name: "country", Source: ColCountry, Type: TypeText, Length: 255, Nullable: true},
			{Name: "salary", Source: ColSalary, Type: TypeInteger, Nullable: true},
			{Name: "performance_rating", Source: ColPerformanceRating, Type: TypeText, Length: 50, Nullable: true},
		},
	}
}

// CanonicalTable describes the final table keyed by employee_id.
func CanonicalTable(name string) *TableMetadata {
	return &TableMetadata{
		Table: name,
		Columns: []Column{
			{Name: "employee_id", Source: ColEmployeeID, Type: TypeInteger},
			{Name: "name", Source: ColName, Type: TypeText, Length: 255, Nullable: true},
			{Name: "age", Source: ColAge, Type: TypeInteger, Nullable: true},
			{Name: "department", Source: ColDepartment, Type: TypeText, Length: 255, Nullable: true},
			{Name: "date_of_joining", Source: ColDateOfJoining, Type: TypeDate, Nullable: true},
			{Name: "years_of_experience", Source: ColYearsOfExperience, Type: TypeInteger, Nullable: true},
			{Name: "country", Source: ColCountry, Type: TypeText, Length: 255, Nullable: true},
			{Name: "salary", Source: ColSalary, Type: TypeInteger, Nullable: true},
			{Name: "performance_rating", Source: ColPerformanceRating, Type: TypeText, Length: 50, Nullable: true},
		},
		PrimaryKeys: []string{"employee_id"},
	}
}

// AuditTable describes the table that records every cleaning operation.
func AuditTable(name string) *TableMetadata {
	return &TableMetadata{
		Table: name,
		Columns: []Column{
			{Name: "id", Source: "id", Type: TypeSerial},
			{Name: "run_id", Source: "run_id", Type: TypeText, Length: 36},
			{Name: "table_name", Source: "table_name", Type: TypeText, Length: 255},
			{Name: "column_name", Source: "column_name", Type: TypeText, Length: 255},
			{Name: "original_value", Source: "original_value", Type: TypeText, Length: 65535, Nullable: true},
			{Name: "new_value", Source: "new_value", Type: TypeText, Length: 65535, Nullable: true},
			{Name: "row_identifier", Source: "row_identifier", Type: TypeText, Length: 64},
			{Name: "cleaning_operation", Source: "cleaning_operation", Type: TypeText, Length: 50},
			{Name: "cleaning_reason", Source: "cleaning_reason", Type: TypeText, Length: 255},
		},
	}
}
