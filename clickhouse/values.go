package clickhouse

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	nullText       = `\N`
	dateTimeLayout = "2006-01-02 15:04:05"

	typeInt64   = "Int64"
	typeUInt64  = "UInt64"
	typeFloat64 = "Float64"
	typeBool    = "Bool"
	typeString  = "String"
)

// field is one cell of a delimited text response before type conversion.
type field struct {
	text string
	null bool
}

// formatText renders a scalar the way ClickHouse text formats expect it.
func formatText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case json.Number:
		return val.String()
	case time.Time:
		return formatTime(val)
	case *time.Time:
		return formatTime(*val)
	case fmt.Stringer:
		return val.String()
	default:
		if literal, err := formatArg(v); err == nil {
			return literal
		}
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize)
}

func formatTime(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format(dateTimeLayout)
	}
	return t.Format(dateTimeLayout + ".999999999")
}

func toInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", val)
		}
		return int64(val), nil
	case float32:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return val.Int64()
	case string:
		return strconv.ParseInt(val, 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case json.Number:
		return val.Float64()
	case string:
		return strconv.ParseFloat(val, 64)
	case uint64:
		return float64(val), nil
	default:
		n, err := toInt64(v)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %T to float64", v)
		}
		return float64(n), nil
	}
}

// baseType strips the Nullable and LowCardinality wrappers from a type name.
func baseType(chType string) (string, bool) {
	nullable := false
	for {
		switch {
		case strings.HasPrefix(chType, "Nullable(") && strings.HasSuffix(chType, ")"):
			chType = chType[len("Nullable(") : len(chType)-1]
			nullable = true
		case strings.HasPrefix(chType, "LowCardinality(") && strings.HasSuffix(chType, ")"):
			chType = chType[len("LowCardinality(") : len(chType)-1]
		default:
			return chType, nullable
		}
	}
}

// convertText converts one text cell according to the declared column type.
// Types without a native Go mapping are kept as strings.
func convertText(f field, chType string) (interface{}, error) {
	if f.null {
		return nil, nil
	}
	base, _ := baseType(chType)
	switch base {
	case "Int8", "Int16", "Int32", "Int64", "UInt8", "UInt16", "UInt32":
		return strconv.ParseInt(f.text, 10, 64)
	case "UInt64":
		return strconv.ParseUint(f.text, 10, 64)
	case "Float32", "Float64":
		return strconv.ParseFloat(f.text, 64)
	case "Bool":
		return strconv.ParseBool(f.text)
	default:
		return f.text, nil
	}
}

// inferColumnType mimics a CSV reader without a schema: integer columns stay
// integers, unsigned columns beyond the int64 range stay UInt64, numeric
// columns become floats, everything else is a string.
func inferColumnType(cells []field) string {
	isInt, isUint, isFloat, seen := true, true, true, false
	for _, c := range cells {
		if c.null {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(c.text, 10, 64); err != nil {
				isInt = false
			}
		}
		if isUint {
			if _, err := strconv.ParseUint(c.text, 10, 64); err != nil {
				isUint = false
			}
		}
		if !isInt && !isUint {
			if _, err := strconv.ParseFloat(c.text, 64); err != nil {
				isFloat = false
				break
			}
		}
	}
	switch {
	case !seen:
		return typeString
	case isInt:
		return typeInt64
	case isUint:
		return typeUInt64
	case isFloat:
		return typeFloat64
	default:
		return typeString
	}
}

// buildTable converts text records into a Table. When types is nil every
// column type is inferred from its cells.
func buildTable(names []string, types []string, records [][]field) (*Table, error) {
	if types != nil && len(types) != len(names) {
		return nil, fmt.Errorf("header has %d names and %d types", len(names), len(types))
	}
	for i, record := range records {
		if len(record) != len(names) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i+1, len(record), len(names))
		}
	}
	table := NewTable(names...)
	for c := range table.Columns {
		cells := make([]field, len(records))
		for r, record := range records {
			cells[r] = record[c]
		}
		if types != nil {
			table.Columns[c].Type = types[c]
		} else {
			table.Columns[c].Type = inferColumnType(cells)
		}
		values := make([]interface{}, len(cells))
		for r, cell := range cells {
			v, err := convertText(cell, table.Columns[c].Type)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", names[c], r+1, err)
			}
			values[r] = v
		}
		table.Columns[c].Values = values
	}
	return table, nil
}

// inferValueType picks a ClickHouse type for a column built in Go.
func inferValueType(values []interface{}) string {
	chType := ""
	for _, v := range values {
		var t string
		switch v.(type) {
		case nil:
			continue
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
			t = typeInt64
		case uint64:
			t = typeUInt64
		case float32, float64:
			t = typeFloat64
		case bool:
			t = typeBool
		default:
			t = typeString
		}
		switch {
		case chType == "":
			chType = t
		case chType == t:
		case isNumericType(chType) && isNumericType(t):
			chType = typeFloat64
		default:
			return typeString
		}
	}
	if chType == "" {
		return typeString
	}
	return chType
}

func isNumericType(t string) bool {
	return t == typeInt64 || t == typeUInt64 || t == typeFloat64
}
