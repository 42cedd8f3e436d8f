package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

func TestParseDialect(t *testing.T) {
	tests := map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"pgx":        Postgres,
		" mysql ":    MySQL,
		"sqlite3":    SQLite,
		"sqlite":     SQLite,
	}
	for in, want := range tests {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"employee_data"`, NewTypeConverter(Postgres, nil).QuoteIdentifier("employee_data"))
	assert.Equal(t, `"we""ird"`, NewTypeConverter(Postgres, nil).QuoteIdentifier(`we"ird`))
	assert.Equal(t, "`we``ird`", NewTypeConverter(MySQL, nil).QuoteIdentifier("we`ird"))
	assert.Equal(t, `"name"`, NewTypeConverter(SQLite, nil).QuoteIdentifier("name"))

	assert.Equal(t, `"hr"."employee_data"`, NewTypeConverter(Postgres, nil).QuoteTable("hr.employee_data"))
	assert.Equal(t, "`a`, `b`", NewTypeConverter(MySQL, nil).QuoteColumns([]string{"a", "b"}))
}

func TestMapColumnType(t *testing.T) {
	tests := []struct {
		dialect Dialect
		col     model.Column
		want    string
	}{
		{Postgres, model.Column{Type: model.TypeSerial}, "SERIAL PRIMARY KEY"},
		{MySQL, model.Column{Type: model.TypeSerial}, "INT AUTO_INCREMENT PRIMARY KEY"},
		{SQLite, model.Column{Type: model.TypeSerial}, "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Postgres, model.Column{Type: model.TypeInteger}, "INT"},
		{SQLite, model.Column{Type: model.TypeInteger}, "INTEGER"},
		{Postgres, model.Column{Type: model.TypeText, Length: 50}, "VARCHAR(50)"},
		{MySQL, model.Column{Type: model.TypeText}, "VARCHAR(255)"},
		{MySQL, model.Column{Type: model.TypeText, Length: 100000}, "TEXT"},
		{SQLite, model.Column{Type: model.TypeText, Length: 50}, "TEXT"},
		{MySQL, model.Column{Type: model.TypeDate}, "DATE"},
	}

	for _, tt := range tests {
		got, err := NewTypeConverter(tt.dialect, zap.NewNop()).MapColumnType(tt.col)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.dialect, tt.col.Type)
	}

	got, err := NewTypeConverter(Postgres, nil).MapColumnType(model.Column{Name: "x", Type: "BLOB"})
	assert.Error(t, err)
	assert.Equal(t, "TEXT", got)
}

func TestCreateTableSQLCanonical(t *testing.T) {
	c := NewTypeConverter(Postgres, nil)

	sql, err := c.CreateTableSQL(model.CanonicalTable("employee_data"), true)
	require.NoError(t, err)

	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "employee_data" (`)
	assert.Contains(t, sql, `"employee_id" INT NOT NULL`)
	assert.Contains(t, sql, `"date_of_joining" DATE NULL`)
	assert.Contains(t, sql, `"performance_rating" VARCHAR(50) NULL`)
	assert.Contains(t, sql, `PRIMARY KEY ("employee_id")`)
}

func TestCreateTableSQLStaging(t *testing.T) {
	c := NewTypeConverter(SQLite, nil)

	sql, err := c.CreateTableSQL(model.StagingTable("employee_data_source"), false)
	require.NoError(t, err)

	assert.Contains(t, sql, `CREATE TABLE "employee_data_source" (`)
	assert.Contains(t, sql, `"id" INTEGER PRIMARY KEY AUTOINCREMENT,`)
	assert.Contains(t, sql, `"date_of_joining" TEXT NULL`)
	assert.NotContains(t, sql, "PRIMARY KEY (")
}

func TestDropTableSQL(t *testing.T) {
	assert.Equal(t, "DROP TABLE IF EXISTS `employee_data_source`",
		NewTypeConverter(MySQL, nil).DropTableSQL("employee_data_source"))
}

func TestMaxBatchRows(t *testing.T) {
	tests := []struct {
		name      string
		dialect   Dialect
		batchSize int
		columns   int
		want      int
	}{
		{"sqlite staging capped", SQLite, 10000, 9, 3640},
		{"sqlite audit capped", SQLite, 10000, 8, 4095},
		{"postgres capped", Postgres, 10000, 9, 7281},
		{"mysql capped", MySQL, 10000, 9, 7281},
		{"under the limit", SQLite, 1000, 9, 1000},
		{"no columns", Postgres, 50000, 0, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTypeConverter(tt.dialect, nil)
			got := c.MaxBatchRows(tt.batchSize, tt.columns)
			assert.Equal(t, tt.want, got)
			if tt.columns > 0 {
				assert.LessOrEqual(t, got*tt.columns, c.MaxBindParameters())
			}
		})
	}
}
