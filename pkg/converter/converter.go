// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// Dialect identifies the SQL flavour of a relational store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a dialect name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case Postgres, MySQL, SQLite:
		return d, nil
	case "postgresql", "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported store dialect: %q", name)
	}
}

// TypeConverter maps logical table metadata onto a dialect's DDL.
type TypeConverter struct {
	logger  *zap.Logger
	dialect Dialect
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Text columns declared longer than this become unbounded TEXT
	MaxVarcharLength int
	// Length used for text columns that declare none
	DefaultVarcharLength int
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		MaxVarcharLength:     4000,
		DefaultVarcharLength: 255,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(dialect Dialect, logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(dialect, logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(dialect Dialect, logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger:  logger,
		dialect: dialect,
		config:  config,
	}
}

// Dialect returns the dialect this converter targets.
func (c *TypeConverter) Dialect() Dialect {
	return c.dialect
}

// MaxBindParameters is the most placeholders one statement may carry.
// SQLite's limit is SQLITE_MAX_VARIABLE_NUMBER as compiled into the driver;
// PostgreSQL and MySQL count parameters in an unsigned 16-bit field.
func (c *TypeConverter) MaxBindParameters() int {
	switch c.dialect {
	case SQLite:
		return 32766
	default:
		return 65535
	}
}

// MaxBatchRows caps batchSize so a multi-row INSERT of rows with columns
// values each stays within MaxBindParameters.
func (c *TypeConverter) MaxBatchRows(batchSize, columns int) int {
	if columns <= 0 {
		return batchSize
	}
	limit := c.MaxBindParameters() / columns
	if batchSize > limit {
		return limit
	}
	return batchSize
}

// GenerateColumnDefinitions creates column definitions for the dialect
func (c *TypeConverter) GenerateColumnDefinitions(metadata *model.TableMetadata) ([]string, error) {
	definitions := make([]string, 0, len(metadata.Columns))

	for _, col := range metadata.Columns {
		sqlType, err := c.MapColumnType(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}

		// Serial types carry their own inline primary key.
		if col.Type == model.TypeSerial {
			definitions = append(definitions, fmt.Sprintf("%s %s", c.QuoteIdentifier(col.Name), sqlType))
			continue
		}

		nullability := "NULL"
		if !col.Nullable || isPrimaryKey(metadata, col.Name) {
			nullability = "NOT NULL"
		}

		def := fmt.Sprintf("%s %s %s",
			c.QuoteIdentifier(col.Name),
			sqlType,
			nullability)

		definitions = append(definitions, def)
	}

	return definitions, nil
}

// CreateTableSQL builds the CREATE TABLE statement for metadata.
func (c *TypeConverter) CreateTableSQL(metadata *model.TableMetadata, ifNotExists bool) (string, error) {
	columnDefs, err := c.GenerateColumnDefinitions(metadata)
	if err != nil {
		return "", err
	}

	if len(metadata.PrimaryKeys) > 0 {
		keys := make([]string, len(metadata.PrimaryKeys))
		for i, k := range metadata.PrimaryKeys {
			keys[i] = c.QuoteIdentifier(k)
		}
		columnDefs = append(columnDefs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}

	verb := "CREATE TABLE"
	if ifNotExists {
		verb = "CREATE TABLE IF NOT EXISTS"
	}

	return fmt.Sprintf("%s %s (\n\t%s\n)",
		verb,
		c.QuoteTable(metadata.Table),
		strings.Join(columnDefs, ",\n\t"),
	), nil
}

// DropTableSQL builds a DROP TABLE IF EXISTS statement.
func (c *TypeConverter) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + c.QuoteTable(table)
}

// QuoteIdentifier properly quotes and escapes a single identifier
func (c *TypeConverter) QuoteIdentifier(name string) string {
	switch c.dialect {
	case Postgres:
		return pq.QuoteIdentifier(name)
	case MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// QuoteTable quotes a possibly schema-qualified table name part by part.
func (c *TypeConverter) QuoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = c.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// QuoteColumns quotes each column name and joins them with commas.
func (c *TypeConverter) QuoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = c.QuoteIdentifier(col)
	}
	return strings.Join(quoted, ", ")
}

func isPrimaryKey(metadata *model.TableMetadata, name string) bool {
	for _, k := range metadata.PrimaryKeys {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
