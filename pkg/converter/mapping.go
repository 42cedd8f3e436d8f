// pkg/converter/mapping.go
package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// MapColumnType converts a logical column type to the dialect's SQL type
func (c *TypeConverter) MapColumnType(col model.Column) (string, error) {
	switch col.Type {
	case model.TypeSerial:
		return c.serialType(), nil
	case model.TypeInteger:
		if c.dialect == SQLite {
			return "INTEGER", nil
		}
		return "INT", nil
	case model.TypeText:
		return c.handleVarcharType(col), nil
	case model.TypeDate:
		return "DATE", nil
	default:
		c.logger.Warn("Unknown column type encountered",
			zap.String("column", col.Name),
			zap.String("type", string(col.Type)))
		return "TEXT", fmt.Errorf("unknown column type: %s (mapped to TEXT as fallback)", col.Type)
	}
}

func (c *TypeConverter) serialType() string {
	switch c.dialect {
	case Postgres:
		return "SERIAL PRIMARY KEY"
	case MySQL:
		return "INT AUTO_INCREMENT PRIMARY KEY"
	default:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// handleVarcharType picks a bounded VARCHAR where the store benefits from it
func (c *TypeConverter) handleVarcharType(col model.Column) string {
	// SQLite ignores declared lengths.
	if c.dialect == SQLite {
		return "TEXT"
	}

	length := col.Length
	if length <= 0 {
		length = c.config.DefaultVarcharLength
	}

	if length > c.config.MaxVarcharLength {
		c.logger.Debug("Converting large VARCHAR to TEXT",
			zap.String("column", col.Name),
			zap.Int("length", length))
		return "TEXT"
	}

	return fmt.Sprintf("VARCHAR(%d)", length)
}
