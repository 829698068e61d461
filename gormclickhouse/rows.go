package gormclickhouse

import (
	"database/sql/driver"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chconnect/clickhouse-client-go/clickhouse"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05.999999999"
)

type resultRows struct {
	columns     []string
	columnTypes []string
	table       *clickhouse.Table
	index       int
}

func newTableRows(table *clickhouse.Table) *resultRows {
	columnTypes := make([]string, table.GetColumnCount())
	for i := range columnTypes {
		columnTypes[i] = table.GetColumnType(i)
	}
	return &resultRows{
		columns:     table.ColumnNames(),
		columnTypes: columnTypes,
		table:       table,
	}
}

func (r *resultRows) Columns() []string {
	return r.columns
}

// ColumnTypeDatabaseTypeName returns the ClickHouse type of a column.
func (r *resultRows) ColumnTypeDatabaseTypeName(index int) string {
	if index < len(r.columnTypes) {
		return r.columnTypes[index]
	}
	return ""
}

func (r *resultRows) Close() error {
	return nil
}

func (r *resultRows) Next(dest []driver.Value) error {
	if r.index >= r.table.GetRowCount() {
		return io.EOF
	}
	row := r.table.Row(r.index)
	r.index++

	for i := range dest {
		if i >= len(row) {
			dest[i] = nil
			continue
		}
		columnType := ""
		if i < len(r.columnTypes) {
			columnType = r.columnTypes[i]
		}
		converted, err := convertValue(row[i], columnType)
		if err != nil {
			return err
		}
		dest[i] = converted
	}
	return nil
}

func convertValue(value interface{}, columnType string) (driver.Value, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return strconv.FormatUint(v, 10), nil
		}
		return int64(v), nil
	case float64:
		return v, nil
	case bool:
		return v, nil
	case []byte:
		return v, nil
	case string:
		return convertString(v, columnType)
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func convertString(value string, columnType string) (driver.Value, error) {
	switch {
	case isDateType(columnType):
		return time.ParseInLocation(dateLayout, value, time.UTC)
	case isDateTimeType(columnType):
		return time.ParseInLocation(dateTimeLayout, value, time.UTC)
	default:
		return value, nil
	}
}

func unwrapType(columnType string) string {
	for _, wrapper := range []string{"Nullable(", "LowCardinality("} {
		if strings.HasPrefix(columnType, wrapper) && strings.HasSuffix(columnType, ")") {
			return unwrapType(columnType[len(wrapper) : len(columnType)-1])
		}
	}
	return columnType
}

func isDateType(columnType string) bool {
	switch unwrapType(columnType) {
	case "Date", "Date32":
		return true
	default:
		return false
	}
}

func isDateTimeType(columnType string) bool {
	base := unwrapType(columnType)
	return base == "DateTime" || strings.HasPrefix(base, "DateTime(") || strings.HasPrefix(base, "DateTime64")
}
