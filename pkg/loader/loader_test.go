package loader

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/employee-cleanse/pkg/config"
	"github.com/David-Botos/employee-cleanse/pkg/connector"
	"github.com/David-Botos/employee-cleanse/pkg/model"
	"github.com/David-Botos/employee-cleanse/pkg/source"
)

const sampleCSV = `Employee_ID,Name,Age,Department,Date_of_Joining,Years_of_Experience,Country,Salary,Performance_Rating
101,alice smith,30,HR,2020-01-15,5,usa,50000,High
102,Bob Jones,abc,Engineering,15/01/2020,,India,60000,
101,Alice Smith,30,HR,2020-01-15,5,USA,50000,High
`

func openStore(t *testing.T) *connector.Store {
	t.Helper()
	ctx := context.Background()

	conn, err := connector.NewSQLiteConnector(ctx, &config.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "loader.db"),
		BusyTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return connector.NewStore(conn, 5*time.Second, zap.NewNop())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func record(id int64, name string) model.CanonicalRecord {
	return model.CanonicalRecord{
		EmployeeID:        model.Int64Ptr(id),
		Name:              name,
		Age:               model.Int64Ptr(30),
		Department:        model.StringPtr("HR"),
		DateOfJoining:     model.NewDate(2020, time.January, 15),
		YearsOfExperience: 5,
		Country:           "Usa",
		Salary:            model.Int64Ptr(50000),
		PerformanceRating: "High",
	}
}

func TestStagingLoadRaw(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	l, err := NewStagingLoader(store, "employee_data_source", 2, zaptest.NewLogger(t))
	require.NoError(t, err)

	result, err := l.LoadRaw(ctx, writeFile(t, "source.csv", sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, result.RowsRead)
	assert.Equal(t, int64(3), result.RowsInserted)
	assert.Empty(t, result.Conditions)

	// "abc" in Age is dropped to null with a diagnostic.
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "invalid_integer", result.Diagnostics[0].Condition)
	assert.Equal(t, model.ColAge, result.Diagnostics[0].Column)

	rows, err := l.ReadRaw(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(101), *rows[0].EmployeeID)
	assert.Equal(t, "alice smith", *rows[0].Name)
	assert.Nil(t, rows[1].Age)
	assert.Equal(t, "15/01/2020", *rows[1].DateOfJoining)
	assert.Nil(t, rows[1].YearsOfExperience)
	assert.Nil(t, rows[1].PerformanceRating)
	assert.Equal(t, int64(101), *rows[2].EmployeeID, "duplicates are kept in staging")
}

func TestStagingLoadReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	l, err := NewStagingLoader(store, "employee_data_source", 500, zap.NewNop())
	require.NoError(t, err)

	path := writeFile(t, "source.csv", sampleCSV)
	_, err = l.LoadRaw(ctx, path)
	require.NoError(t, err)
	_, err = l.LoadRaw(ctx, path)
	require.NoError(t, err)

	n, err := store.CountRows(ctx, "employee_data_source")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStagingMissingSource(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	l, err := NewStagingLoader(store, "employee_data_source", 500, zap.NewNop())
	require.NoError(t, err)

	result, err := l.LoadRaw(ctx, filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.True(t, result.Has(source.ErrSourceNotFound))
	assert.Zero(t, result.RowsRead)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "source_missing", result.Diagnostics[0].Condition)

	rows, err := l.ReadRaw(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewLoadersRequireDependencies(t *testing.T) {
	_, err := NewStagingLoader(nil, "t", 1, zap.NewNop())
	assert.Error(t, err)
	_, err = NewCanonicalLoader(openStore(t), "t", 1, "", nil)
	assert.Error(t, err)
}

func TestCanonicalLoadClean(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	snapshot := filepath.Join(t.TempDir(), "employee_db.csv")

	l, err := NewCanonicalLoader(store, "employee_data", 500, snapshot, zaptest.NewLogger(t))
	require.NoError(t, err)

	records := []model.CanonicalRecord{record(102, "Bob Jones"), record(101, "Alice Smith")}
	records[0].Department = nil
	records[0].Salary = nil

	result, err := l.LoadClean(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RowsInserted)
	assert.Zero(t, result.RowsSkipped)
	assert.Empty(t, result.Conditions)
	assert.Equal(t, snapshot, result.SnapshotPath)

	require.NotNil(t, result.Verification)
	assert.True(t, result.Verification.RowCountMatches)
	assert.True(t, result.Verification.IntegrityVerified)

	got, err := l.ReadClean(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(101), *got[0].EmployeeID)
	assert.Equal(t, records[1], got[0])
	assert.Equal(t, records[0], got[1])

	f, err := os.Open(snapshot)
	require.NoError(t, err)
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, model.EmployeeColumns, lines[0])
	assert.Equal(t, []string{"101", "Alice Smith", "30", "HR", "2020-01-15", "5", "Usa", "50000", "High"}, lines[1])
	assert.Equal(t, []string{"102", "Bob Jones", "30", "", "2020-01-15", "5", "Usa", "", "High"}, lines[2])
}

func TestCanonicalLoadReplacesContents(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	l, err := NewCanonicalLoader(store, "employee_data", 500, "", zap.NewNop())
	require.NoError(t, err)

	_, err = l.LoadClean(ctx, []model.CanonicalRecord{record(1, "A"), record(2, "B"), record(3, "C")})
	require.NoError(t, err)

	result, err := l.LoadClean(ctx, []model.CanonicalRecord{record(4, "D")})
	require.NoError(t, err)
	assert.Empty(t, result.SnapshotPath)

	got, err := l.ReadClean(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "D", got[0].Name)
}

func TestCanonicalDuplicateKeyKeepsPreviousContents(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	l, err := NewCanonicalLoader(store, "employee_data", 500, "", zap.NewNop())
	require.NoError(t, err)

	_, err = l.LoadClean(ctx, []model.CanonicalRecord{record(1, "Kept")})
	require.NoError(t, err)

	_, err = l.LoadClean(ctx, []model.CanonicalRecord{record(7, "X"), record(7, "Y")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	got, err := l.ReadClean(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Name)
}

func TestCanonicalSkipsRowsWithoutID(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	l, err := NewCanonicalLoader(store, "employee_data", 500, "", zap.NewNop())
	require.NoError(t, err)

	orphan := record(0, "No Id")
	orphan.EmployeeID = nil

	result, err := l.LoadClean(ctx, []model.CanonicalRecord{record(1, "A"), orphan})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 1, result.RowsSkipped)
	assert.Equal(t, int64(1), result.RowsInserted)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "missing_employee_id", result.Diagnostics[0].Condition)
	assert.Equal(t, 2, result.Diagnostics[0].Row)
	assert.True(t, result.Verification.RowCountMatches)
}

func TestCanonicalExportFailureIsRecoverable(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	snapshot := filepath.Join(t.TempDir(), "missing", "employee_db.csv")

	l, err := NewCanonicalLoader(store, "employee_data", 500, snapshot, zap.NewNop())
	require.NoError(t, err)

	result, err := l.LoadClean(ctx, []model.CanonicalRecord{record(1, "A")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RowsInserted)
	assert.True(t, result.Has(ErrExportFailed))
	assert.Empty(t, result.SnapshotPath)
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, "export_failed", result.Diagnostics[len(result.Diagnostics)-1].Condition)
}

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employee_db.xlsx")
	records := []model.CanonicalRecord{record(101, "Alice Smith")}
	records[0].Salary = nil

	require.NoError(t, NewSnapshotExporter(nil).Export(records, path))

	_, err := os.Stat(strings.TrimSuffix(path, ".xlsx") + ".tmp.xlsx")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(snapshotSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.EmployeeColumns, rows[0])
	assert.Equal(t, "101", rows[1][0])
	assert.Equal(t, "Alice Smith", rows[1][1])
	assert.Equal(t, "2020-01-15", rows[1][4])
	assert.Equal(t, "", rows[1][7])
	assert.Equal(t, "High", rows[1][8])
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatExcel, FormatForPath("out/Employee.XLSX"))
	assert.Equal(t, FormatCSV, FormatForPath("employee_db.csv"))
	assert.Equal(t, FormatCSV, FormatForPath("employee_db"))
}

func TestVerifierRowCountMismatch(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	meta := model.CanonicalTable("employee_data")
	require.NoError(t, store.RecreateTable(ctx, meta))

	_, err := store.BatchInsert(ctx, meta, [][]interface{}{record(1, "A").Values()}, 10)
	require.NoError(t, err)

	report, err := NewVerifier(store, zap.NewNop()).GenerateVerificationReport(ctx, meta, 2)
	require.NoError(t, err)
	assert.False(t, report.RowCountMatches)
	assert.Equal(t, int64(1), report.ActualRowCount)
	assert.Equal(t, int64(2), report.ExpectedRowCount)
	assert.True(t, report.IntegrityVerified)
}
